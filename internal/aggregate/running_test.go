package aggregate

import (
	"testing"

	"vaultScope/internal/model"
)

func vaultDepositEvent(block uint64, owner, assets string) *model.TypedEvent {
	return &model.TypedEvent{
		BlockNumber: block,
		Kind:        model.KindVaultDeposit,
		Decoded: model.VaultDepositData{
			Owner:    owner,
			Receiver: owner,
			Assets:   assets,
			Shares:   assets,
		},
	}
}

func vaultWithdrawEvent(block uint64, owner, assets string) *model.TypedEvent {
	return &model.TypedEvent{
		BlockNumber: block,
		Kind:        model.KindVaultWithdraw,
		Decoded: model.VaultWithdrawData{
			Receiver: owner,
			Owner:    owner,
			Assets:   assets,
			Shares:   assets,
		},
	}
}

func shareTransferEvent(block uint64, from, to, value string) *model.TypedEvent {
	return &model.TypedEvent{
		BlockNumber: block,
		Kind:        model.KindShareTransfer,
		Decoded: model.ShareTransferData{
			From:  from,
			To:    to,
			Value: value,
		},
	}
}

func TestRunningBalancesLeftFold(t *testing.T) {
	owner := "0x1111111111111111111111111111111111111111"
	other := "0x2222222222222222222222222222222222222222"

	events := []*model.TypedEvent{
		vaultDepositEvent(100, owner, "100"),
		vaultWithdrawEvent(101, owner, "40"),
		shareTransferEvent(102, owner, other, "40"),
		vaultDepositEvent(103, owner, "5"),
	}

	entries, err := RunningBalances(events)
	if err != nil {
		t.Fatalf("running balances: %v", err)
	}

	want := []string{"100", "60", "60", "65"}
	if len(entries) != len(want) {
		t.Fatalf("entry count mismatch: %d != %d", len(entries), len(want))
	}
	for i, entry := range entries {
		if entry.Balance.String() != want[i] {
			t.Fatalf("balance %d mismatch: %s != %s", i, entry.Balance, want[i])
		}
		if entry.Event != events[i] {
			t.Fatalf("entry %d lost event ordering", i)
		}
	}
}

func TestRunningBalancesEmpty(t *testing.T) {
	entries, err := RunningBalances(nil)
	if err != nil {
		t.Fatalf("running balances: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestSortByBlockStable(t *testing.T) {
	owner := "0x1111111111111111111111111111111111111111"

	first := vaultDepositEvent(200, owner, "1")
	second := vaultWithdrawEvent(200, owner, "1")
	earlier := vaultDepositEvent(100, owner, "2")

	events := []*model.TypedEvent{first, second, earlier}
	SortByBlock(events)

	if events[0] != earlier {
		t.Fatalf("lowest block should sort first")
	}
	if events[1] != first || events[2] != second {
		t.Fatalf("ties must keep input order")
	}
}

package aggregate

import (
	"math/big"
	"math/rand"
	"testing"

	"vaultScope/internal/model"
)

func depositProcessedEvent(block uint64, asset, user, amount string) *model.TypedEvent {
	return &model.TypedEvent{
		BlockNumber: block,
		Kind:        model.KindDepositProcessed,
		Decoded: model.DepositProcessedData{
			Asset:  asset,
			User:   user,
			Amount: amount,
		},
	}
}

func TestFlatSumsGroupsAndSorts(t *testing.T) {
	assetA := "0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa"
	assetB := "0xBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBb"
	userOne := "0x1111111111111111111111111111111111111111"
	userTwo := "0x2222222222222222222222222222222222222222"

	events := []*model.TypedEvent{
		depositProcessedEvent(10, assetB, userTwo, "5"),
		depositProcessedEvent(11, assetA, userOne, "100"),
		depositProcessedEvent(12, assetA, userOne, "50"),
		depositProcessedEvent(13, assetB, userOne, "7"),
	}

	totals, err := FlatSums(events)
	if err != nil {
		t.Fatalf("flat sums: %v", err)
	}

	if len(totals) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(totals))
	}
	if totals[0].User != userOne || totals[0].Asset != assetA || totals[0].Amount.String() != "150" {
		t.Fatalf("first row mismatch: %+v", totals[0])
	}
	if totals[1].User != userOne || totals[1].Asset != assetB || totals[1].Amount.String() != "7" {
		t.Fatalf("second row mismatch: %+v", totals[1])
	}
	if totals[2].User != userTwo || totals[2].Asset != assetB || totals[2].Amount.String() != "5" {
		t.Fatalf("third row mismatch: %+v", totals[2])
	}
}

func TestFlatSumsPermutationInvariant(t *testing.T) {
	asset := "0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa"
	users := []string{
		"0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222",
		"0x3333333333333333333333333333333333333333",
	}

	events := make([]*model.TypedEvent, 0, 30)
	for i := 0; i < 30; i++ {
		events = append(events, depositProcessedEvent(uint64(i), asset, users[i%len(users)], "1000000000000000000"))
	}

	baseline, err := FlatSums(events)
	if err != nil {
		t.Fatalf("flat sums: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 5; round++ {
		shuffled := make([]*model.TypedEvent, len(events))
		copy(shuffled, events)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		totals, err := FlatSums(shuffled)
		if err != nil {
			t.Fatalf("flat sums: %v", err)
		}
		if len(totals) != len(baseline) {
			t.Fatalf("group count changed: %d != %d", len(totals), len(baseline))
		}
		for i := range totals {
			if totals[i].User != baseline[i].User || totals[i].Asset != baseline[i].Asset {
				t.Fatalf("row %d key mismatch after shuffle", i)
			}
			if totals[i].Amount.Cmp(baseline[i].Amount) != 0 {
				t.Fatalf("row %d sum mismatch after shuffle", i)
			}
		}
	}
}

func TestFlatSumsExactAtWeiScale(t *testing.T) {
	asset := "0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa"
	user := "0x1111111111111111111111111111111111111111"

	const n = 1000
	events := make([]*model.TypedEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, depositProcessedEvent(uint64(i), asset, user, "1000000000000000000"))
	}

	totals, err := FlatSums(events)
	if err != nil {
		t.Fatalf("flat sums: %v", err)
	}
	if len(totals) != 1 {
		t.Fatalf("expected 1 group, got %d", len(totals))
	}

	want := new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000_000))
	if totals[0].Amount.Cmp(want) != 0 {
		t.Fatalf("sum mismatch: %s != %s", totals[0].Amount, want)
	}
}

func TestFlatSumsEmptyInput(t *testing.T) {
	totals, err := FlatSums(nil)
	if err != nil {
		t.Fatalf("flat sums: %v", err)
	}
	if len(totals) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(totals))
	}
}

package aggregate

import (
	"fmt"
	"math/big"

	"vaultScope/internal/model"
)

// RunningEntry pairs a vault event with the balance after applying it.
type RunningEntry struct {
	Event   *model.TypedEvent
	Balance *big.Int
}

// BalanceChange returns the signed underlying-asset effect of a vault event:
// +assets for deposits, -assets for withdrawals, zero for share transfers.
func BalanceChange(event *model.TypedEvent) (*big.Int, error) {
	switch payload := event.Decoded.(type) {
	case model.VaultDepositData:
		return parseBigInt(payload.Assets)
	case model.VaultWithdrawData:
		assets, err := parseBigInt(payload.Assets)
		if err != nil {
			return nil, err
		}
		return assets.Neg(assets), nil
	case model.ShareTransferData:
		return big.NewInt(0), nil
	default:
		return nil, fmt.Errorf("vault payload type %T", event.Decoded)
	}
}

// RunningBalances folds balance changes left to right over events already
// sorted by block number, emitting one entry per event in the same order.
func RunningBalances(events []*model.TypedEvent) ([]RunningEntry, error) {
	entries := make([]RunningEntry, 0, len(events))
	balance := big.NewInt(0)
	for _, event := range events {
		change, err := BalanceChange(event)
		if err != nil {
			return nil, err
		}
		balance = new(big.Int).Add(balance, change)
		entries = append(entries, RunningEntry{Event: event, Balance: balance})
	}
	return entries, nil
}

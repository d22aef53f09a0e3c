package aggregate

import (
	"fmt"
	"math/big"
	"sort"

	"vaultScope/internal/model"
)

// DepositTotal is the summed amount for one (user, asset) pair.
type DepositTotal struct {
	User   string
	Asset  string
	Amount *big.Int
}

// FlatSums groups DepositProcessed events by (user, asset) and sums amounts.
// Rows come back sorted by user then asset (byte order of the checksummed
// text). Events of other kinds are ignored.
func FlatSums(events []*model.TypedEvent) ([]DepositTotal, error) {
	type groupKey struct {
		user  string
		asset string
	}

	sums := make(map[groupKey]*big.Int)
	for _, event := range events {
		if event.Kind != model.KindDepositProcessed {
			continue
		}
		payload, ok := event.Decoded.(model.DepositProcessedData)
		if !ok {
			return nil, fmt.Errorf("deposit payload type %T", event.Decoded)
		}
		amount, err := parseBigInt(payload.Amount)
		if err != nil {
			return nil, fmt.Errorf("deposit amount: %w", err)
		}

		key := groupKey{user: payload.User, asset: payload.Asset}
		total := sums[key]
		if total == nil {
			total = big.NewInt(0)
			sums[key] = total
		}
		total.Add(total, amount)
	}

	totals := make([]DepositTotal, 0, len(sums))
	for key, amount := range sums {
		totals = append(totals, DepositTotal{User: key.user, Asset: key.asset, Amount: amount})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].User != totals[j].User {
			return totals[i].User < totals[j].User
		}
		return totals[i].Asset < totals[j].Asset
	})

	return totals, nil
}

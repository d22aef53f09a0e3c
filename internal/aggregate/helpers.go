package aggregate

import (
	"fmt"
	"math/big"
	"sort"

	"vaultScope/internal/model"
)

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}

// SortByBlock orders events by ascending block number, keeping input order
// for ties. Chunked fetches only guarantee per-chunk ordering, so callers
// sort once before any running fold.
func SortByBlock(events []*model.TypedEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].BlockNumber < events[j].BlockNumber
	})
}

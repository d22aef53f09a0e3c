package aggregate

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"vaultScope/internal/model"
)

// UserNet is the per-user vault position for one run.
type UserNet struct {
	Vault     string
	User      string
	Deposited *big.Int
	Withdrawn *big.Int
	Net       *big.Int
}

// Totals carries run-wide sums across all accumulated users, including those
// later dropped for a zero net balance.
type Totals struct {
	Deposited *big.Int
	Withdrawn *big.Int
	Net       *big.Int
}

// NetBalances accumulates deposited and withdrawn assets per owner over vault
// events. Share transfers record share movement only and are skipped; events
// owned by excludedAddress (compared case-insensitively) are dropped before
// accumulation, so they reach neither rows nor totals. Users whose net
// balance is exactly zero stay in the totals but are filtered from the rows.
// Rows come back sorted by user address.
func NetBalances(vault string, events []*model.TypedEvent, excludedAddress string) ([]UserNet, Totals, error) {
	type position struct {
		deposited *big.Int
		withdrawn *big.Int
	}

	positions := make(map[string]*position)
	for _, event := range events {
		var owner string
		var assets *big.Int
		var deposit bool

		switch payload := event.Decoded.(type) {
		case model.VaultDepositData:
			parsed, err := parseBigInt(payload.Assets)
			if err != nil {
				return nil, Totals{}, fmt.Errorf("deposit assets: %w", err)
			}
			owner, assets, deposit = payload.Owner, parsed, true
		case model.VaultWithdrawData:
			parsed, err := parseBigInt(payload.Assets)
			if err != nil {
				return nil, Totals{}, fmt.Errorf("withdraw assets: %w", err)
			}
			owner, assets = payload.Owner, parsed
		case model.ShareTransferData:
			continue
		default:
			return nil, Totals{}, fmt.Errorf("vault payload type %T", event.Decoded)
		}

		if excludedAddress != "" && strings.EqualFold(owner, excludedAddress) {
			continue
		}

		pos := positions[owner]
		if pos == nil {
			pos = &position{deposited: big.NewInt(0), withdrawn: big.NewInt(0)}
			positions[owner] = pos
		}
		if deposit {
			pos.deposited.Add(pos.deposited, assets)
		} else {
			pos.withdrawn.Add(pos.withdrawn, assets)
		}
	}

	totals := Totals{
		Deposited: big.NewInt(0),
		Withdrawn: big.NewInt(0),
	}

	nets := make([]UserNet, 0, len(positions))
	for owner, pos := range positions {
		totals.Deposited.Add(totals.Deposited, pos.deposited)
		totals.Withdrawn.Add(totals.Withdrawn, pos.withdrawn)

		net := new(big.Int).Sub(pos.deposited, pos.withdrawn)
		if net.Sign() == 0 {
			continue
		}
		nets = append(nets, UserNet{
			Vault:     vault,
			User:      owner,
			Deposited: pos.deposited,
			Withdrawn: pos.withdrawn,
			Net:       net,
		})
	}
	sort.Slice(nets, func(i, j int) bool {
		return nets[i].User < nets[j].User
	})

	totals.Net = new(big.Int).Sub(totals.Deposited, totals.Withdrawn)
	return nets, totals, nil
}

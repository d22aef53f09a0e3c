package report

import (
	"fmt"
	"strings"

	"vaultScope/internal/aggregate"
	"vaultScope/internal/model"
)

// CSV headers for the three report shapes.
var (
	FlatDepositHeader    = []string{"asset", "address", "amount"}
	GroupedDepositHeader = []string{"user", "asset", "total_amount"}
	VaultBalanceHeader   = []string{"vault", "user", "amount"}
)

// FlatDepositRows emits one row per DepositProcessed event, in input order.
// Amounts are carried as decimal strings end to end.
func FlatDepositRows(events []*model.TypedEvent) ([][]string, error) {
	rows := make([][]string, 0, len(events))
	for _, event := range events {
		if event.Kind != model.KindDepositProcessed {
			continue
		}
		payload, ok := event.Decoded.(model.DepositProcessedData)
		if !ok {
			return nil, fmt.Errorf("deposit payload type %T", event.Decoded)
		}
		rows = append(rows, []string{payload.Asset, payload.User, payload.Amount})
	}
	return rows, nil
}

// GroupedDepositRows emits one row per (user, asset) total, keeping the
// aggregator's user-then-asset ordering.
func GroupedDepositRows(totals []aggregate.DepositTotal) [][]string {
	rows := make([][]string, 0, len(totals))
	for _, total := range totals {
		rows = append(rows, []string{total.User, total.Asset, total.Amount.String()})
	}
	return rows
}

// VaultBalanceRows emits one row per user with a non-zero net balance.
func VaultBalanceRows(nets []aggregate.UserNet) [][]string {
	rows := make([][]string, 0, len(nets))
	for _, net := range nets {
		rows = append(rows, []string{net.Vault, net.User, net.Net.String()})
	}
	return rows
}

// VaultReportFilename names the per-vault balance report after the first
// 8 hex characters of the vault address.
func VaultReportFilename(vault string) string {
	trimmed := strings.ToLower(strings.TrimPrefix(vault, "0x"))
	if len(trimmed) > 8 {
		trimmed = trimmed[:8]
	}
	return fmt.Sprintf("vault_balances_%s.csv", trimmed)
}

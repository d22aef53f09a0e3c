package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaultScope/internal/aggregate"
	"vaultScope/internal/chain"
	"vaultScope/internal/config"
	"vaultScope/internal/report"
	"vaultScope/internal/scan"
	"vaultScope/internal/storage"
	"vaultScope/internal/vault"
)

func runVaults(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadVaults(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(cfg.Endpoints) == 0 {
		return fmt.Errorf("at least one rpc endpoint is required")
	}
	if len(cfg.Vaults) == 0 {
		return fmt.Errorf("at least one vault address is required")
	}

	vaults, err := scan.ParseAddresses(cfg.Vaults)
	if err != nil {
		return err
	}

	// One OR-filter at topic position 0 fetches all three shapes per vault.
	topics, err := vault.Topic0ForEvents(vault.EventDeposit, vault.EventWithdraw, vault.EventTransfer)
	if err != nil {
		return err
	}

	decoder, err := vault.NewDecoder(vault.DecoderConfig{
		Events: []string{vault.EventDeposit, vault.EventWithdraw, vault.EventTransfer},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.Endpoints, logger)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var rawSink storage.Storage
	if cfg.RawOut != "" {
		rawSink = storage.NewJsonlStorage(cfg.RawOut)
	}

	grandDeposited := big.NewInt(0)
	grandWithdrawn := big.NewInt(0)
	reportedUsers := 0

	for _, vaultAddr := range vaults {
		vaultHex := vaultAddr.Hex()
		vaultLogger := logger.With(zap.String("vault", vaultHex))

		scanner := scan.NewScanner(scan.Config{
			FromBlock:    cfg.FromBlock,
			ToBlock:      cfg.ToBlock,
			Addresses:    []common.Address{vaultAddr},
			Topic0:       topics,
			ChunkSize:    cfg.ChunkSize,
			ChunkDelay:   cfg.ChunkDelay,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
		}, chainClient, rawSink, vaultLogger)

		vaultLogger.Info("vault scan start",
			zap.Uint64("from", cfg.FromBlock),
			zap.Uint64("to", cfg.ToBlock),
			zap.Uint64("chunk_size", cfg.ChunkSize),
		)

		records, summary, err := scanner.Run(ctx)
		if err != nil {
			return err
		}

		events, stats := decodeRecords(decoder, records, vaultLogger)
		aggregate.SortByBlock(events)

		running, err := aggregate.RunningBalances(events)
		if err != nil {
			return err
		}
		for _, entry := range running {
			vaultLogger.Debug("running balance",
				zap.Uint64("block", entry.Event.BlockNumber),
				zap.String("kind", string(entry.Event.Kind)),
				zap.String("balance", entry.Balance.String()),
			)
		}
		if len(running) > 0 {
			vaultLogger.Info("final running balance",
				zap.String("balance", running[len(running)-1].Balance.String()),
				zap.Int("events", len(running)),
			)
		}

		nets, totals, err := aggregate.NetBalances(vaultHex, events, cfg.Excluded)
		if err != nil {
			return err
		}

		outPath := filepath.Join(cfg.OutDir, report.VaultReportFilename(vaultHex))
		csvBytes, err := report.Render(report.VaultBalanceHeader, report.VaultBalanceRows(nets))
		if err != nil {
			return err
		}
		if err := report.WriteFile(outPath, csvBytes); err != nil {
			return err
		}

		vaultLogger.Info("vault report written",
			zap.String("out", outPath),
			zap.Int("users", len(nets)),
			zap.String("total_deposited", totals.Deposited.String()),
			zap.String("total_withdrawn", totals.Withdrawn.String()),
			zap.String("net", totals.Net.String()),
		)
		logRunSummary(vaultLogger, summary, stats)

		grandDeposited.Add(grandDeposited, totals.Deposited)
		grandWithdrawn.Add(grandWithdrawn, totals.Withdrawn)
		reportedUsers += len(nets)
	}

	logger.Info("all vault reports complete",
		zap.Int("vaults", len(vaults)),
		zap.Int("reported_users", reportedUsers),
		zap.String("total_deposited", grandDeposited.String()),
		zap.String("total_withdrawn", grandWithdrawn.String()),
		zap.String("net", new(big.Int).Sub(grandDeposited, grandWithdrawn).String()),
	)

	return nil
}

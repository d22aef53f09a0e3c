package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

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

func runDeposits(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDeposits(cfgFile, cmd.Flags())
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
	if cfg.Contract == "" {
		return fmt.Errorf("contract address is required")
	}

	addresses, err := scan.ParseAddresses([]string{cfg.Contract})
	if err != nil {
		return err
	}

	topics, err := vault.Topic0ForEvents(vault.EventDepositProcessed)
	if err != nil {
		return err
	}

	decoder, err := vault.NewDecoder(vault.DecoderConfig{Events: []string{vault.EventDepositProcessed}})
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

	scanner := scan.NewScanner(scan.Config{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		Addresses:    addresses,
		Topic0:       topics,
		ChunkSize:    cfg.ChunkSize,
		ChunkDelay:   cfg.ChunkDelay,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, rawSink, logger)

	logger.Info("deposits scan start",
		zap.String("contract", cfg.Contract),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("chunk_size", cfg.ChunkSize),
		zap.String("flat_out", cfg.FlatOut),
		zap.String("grouped_out", cfg.GroupedOut),
	)

	records, summary, err := scanner.Run(ctx)
	if err != nil {
		return err
	}

	events, stats := decodeRecords(decoder, records, logger)
	aggregate.SortByBlock(events)

	flatRows, err := report.FlatDepositRows(events)
	if err != nil {
		return err
	}
	flatCSV, err := report.Render(report.FlatDepositHeader, flatRows)
	if err != nil {
		return err
	}
	if err := report.WriteFile(cfg.FlatOut, flatCSV); err != nil {
		return err
	}

	totals, err := aggregate.FlatSums(events)
	if err != nil {
		return err
	}
	groupedCSV, err := report.Render(report.GroupedDepositHeader, report.GroupedDepositRows(totals))
	if err != nil {
		return err
	}
	if err := report.WriteFile(cfg.GroupedOut, groupedCSV); err != nil {
		return err
	}

	logger.Info("deposit reports written",
		zap.Int("deposit_rows", len(flatRows)),
		zap.Int("grouped_rows", len(totals)),
		zap.String("flat_out", cfg.FlatOut),
		zap.String("grouped_out", cfg.GroupedOut),
	)
	logRunSummary(logger, summary, stats)

	return nil
}

package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vaultScope/internal/model"
	"vaultScope/internal/scan"
	"vaultScope/internal/vault"
)

func main() {
	root := &cobra.Command{
		Use:          "reporter",
		Short:        "On-chain deposit and vault balance reporter",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	depositsCmd := &cobra.Command{
		Use:   "deposits",
		Short: "Build deposit reports from DepositProcessed logs",
		RunE:  runDeposits,
	}

	depositsCmd.Flags().StringSlice("rpc", nil, "RPC endpoints, tried in order (comma-separated)")
	depositsCmd.Flags().String("contract", "", "deposit-processing contract address")
	depositsCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	depositsCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	depositsCmd.Flags().Uint64("chunk-size", 2000, "blocks per getLogs request")
	depositsCmd.Flags().Duration("chunk-delay", 200*time.Millisecond, "pause between chunk requests")
	depositsCmd.Flags().Int("max-retries", 5, "maximum retry attempts per chunk")
	depositsCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	depositsCmd.Flags().String("flat-out", "./data/deposits.csv", "flat deposit report path")
	depositsCmd.Flags().String("grouped-out", "./data/deposits_by_user.csv", "grouped deposit report path")
	depositsCmd.Flags().String("raw-out", "", "optional raw logs JSONL archive path")
	depositsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(depositsCmd)

	vaultsCmd := &cobra.Command{
		Use:   "vaults",
		Short: "Build per-user balance reports from ERC-4626 vault logs",
		RunE:  runVaults,
	}

	vaultsCmd.Flags().StringSlice("rpc", nil, "RPC endpoints, tried in order (comma-separated)")
	vaultsCmd.Flags().StringSlice("vault", nil, "vault contract addresses (comma-separated)")
	vaultsCmd.Flags().String("excluded", "", "address excluded from per-user balances")
	vaultsCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	vaultsCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	vaultsCmd.Flags().Uint64("chunk-size", 2000, "blocks per getLogs request")
	vaultsCmd.Flags().Duration("chunk-delay", 200*time.Millisecond, "pause between chunk requests")
	vaultsCmd.Flags().Int("max-retries", 5, "maximum retry attempts per chunk")
	vaultsCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	vaultsCmd.Flags().String("out-dir", "./data", "per-vault report output directory")
	vaultsCmd.Flags().String("raw-out", "", "optional raw logs JSONL archive path")
	vaultsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(vaultsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// decodeStats tallies per-log outcomes so recovered errors stay visible in
// the end-of-run summary.
type decodeStats struct {
	Total   int
	Decoded int
	Skipped int
	Errored int
	Samples []model.DecodeError
}

const maxErrorSamples = 5

func decodeRecords(decoder *vault.Decoder, records []model.LogRecord, logger *zap.Logger) ([]*model.TypedEvent, decodeStats) {
	events := make([]*model.TypedEvent, 0, len(records))
	stats := decodeStats{}

	for _, record := range records {
		stats.Total++
		outcome := decoder.Decode(record)
		switch outcome.Status {
		case model.StatusDecoded:
			stats.Decoded++
			events = append(events, outcome.Event)
		case model.StatusSkipped:
			stats.Skipped++
		case model.StatusErrored:
			stats.Errored++
			errRecord := model.DecodeErrorFromRecord(record, errors.New(outcome.Err))
			if len(stats.Samples) < maxErrorSamples {
				stats.Samples = append(stats.Samples, errRecord)
			}
			logger.Debug("decode failed",
				zap.Uint64("block", record.BlockNumber),
				zap.String("tx", record.TxHash),
				zap.String("error", outcome.Err),
			)
		}
	}

	return events, stats
}

func logRunSummary(logger *zap.Logger, summary scan.Summary, stats decodeStats) {
	fields := []zap.Field{
		zap.Uint64("chain_id", summary.ChainID),
		zap.Int("chunks", summary.Chunks),
		zap.Int("logs", summary.Logs),
		zap.Int("decoded", stats.Decoded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("decode_errors", stats.Errored),
		zap.Int("fetch_errors", summary.FetchErrors),
	}
	if len(stats.Samples) > 0 {
		fields = append(fields, zap.Any("decode_error_samples", stats.Samples))
	}
	if summary.FirstError != "" {
		fields = append(fields, zap.String("first_fetch_error", summary.FirstError))
	}
	logger.Info("run summary", fields...)

	// Data for missing ranges is absent from the reports; make the gap loud.
	for _, missing := range summary.MissingRanges {
		logger.Warn("block range missing from output",
			zap.Uint64("from", missing.From),
			zap.Uint64("to", missing.To),
		)
	}
}

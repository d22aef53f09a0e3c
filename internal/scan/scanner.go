package scan

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"vaultScope/internal/model"
	"vaultScope/internal/storage"
)

// LogSource is the chain capability the scanner consumes.
type LogSource interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// Config holds runtime settings for a scan.
type Config struct {
	FromBlock    uint64
	ToBlock      uint64
	Addresses    []common.Address
	Topic0       []common.Hash
	ChunkSize    uint64
	ChunkDelay   time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Summary reports what a scan actually covered. MissingRanges lists chunks
// whose fetch failed after retries and therefore contributed zero logs.
type Summary struct {
	ChainID       uint64
	Chunks        int
	Logs          int
	MissingRanges []BlockRange
	FetchErrors   int
	FirstError    string
}

// Scanner fetches logs chunk by chunk, one request in flight at a time.
type Scanner struct {
	cfg    Config
	source LogSource
	raw    storage.Storage
	logger *zap.Logger
	seen   map[string]struct{}
}

// NewScanner builds a Scanner. rawSink may be nil; when set, every fetched
// batch is also archived there.
func NewScanner(cfg Config, source LogSource, rawSink storage.Storage, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		cfg:    cfg,
		source: source,
		raw:    rawSink,
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Run executes the scan and returns the fetched records in chunk order.
// A chunk that fails after retries is skipped, not fatal; the gap is
// recorded in the summary so callers can surface it.
func (s *Scanner) Run(ctx context.Context) ([]model.LogRecord, Summary, error) {
	if s.source == nil {
		return nil, Summary{}, fmt.Errorf("log source is nil")
	}
	if s.cfg.ChunkSize == 0 {
		return nil, Summary{}, fmt.Errorf("chunk size must be greater than zero")
	}
	if len(s.cfg.Addresses) == 0 {
		return nil, Summary{}, fmt.Errorf("at least one address is required")
	}

	chainID, err := s.source.ChainID(ctx)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return nil, Summary{}, fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}

	from := s.cfg.FromBlock
	to := s.cfg.ToBlock
	if to == 0 {
		latest, err := s.source.BlockNumber(ctx)
		if err != nil {
			return nil, Summary{}, fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	summary := Summary{ChainID: chainID.Uint64()}
	if from > to {
		s.logger.Info("nothing to scan", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil, summary, nil
	}

	ranges, err := SplitRange(from, to, s.cfg.ChunkSize)
	if err != nil {
		return nil, Summary{}, err
	}

	records := make([]model.LogRecord, 0)
	for i, chunk := range ranges {
		select {
		case <-ctx.Done():
			return nil, Summary{}, ctx.Err()
		default:
		}

		s.logger.Debug("fetch logs", zap.Uint64("from", chunk.From), zap.Uint64("to", chunk.To))

		logs, err := s.filterLogsWithRetry(ctx, chunk.From, chunk.To)
		if err != nil {
			summary.FetchErrors++
			if summary.FirstError == "" {
				summary.FirstError = err.Error()
			}
			summary.MissingRanges = append(summary.MissingRanges, chunk)
			s.logger.Warn("chunk skipped after retries",
				zap.Error(err),
				zap.Uint64("from", chunk.From),
				zap.Uint64("to", chunk.To),
			)
			continue
		}

		ingestedAt := time.Now().UTC()
		batch := make([]model.LogRecord, 0, len(logs))
		for _, log := range logs {
			if s.isDuplicate(log) {
				continue
			}
			batch = append(batch, buildLogRecord(summary.ChainID, log, ingestedAt))
		}

		if s.raw != nil {
			if err := s.raw.PutLogBatch(batch); err != nil {
				return nil, Summary{}, fmt.Errorf("archive logs: %w", err)
			}
		}

		records = append(records, batch...)
		summary.Chunks++
		summary.Logs += len(batch)

		s.logger.Info("chunk complete",
			zap.Int("logs", len(batch)),
			zap.Uint64("from", chunk.From),
			zap.Uint64("to", chunk.To),
		)

		if s.cfg.ChunkDelay > 0 && i < len(ranges)-1 {
			if err := sleepCtx(ctx, s.cfg.ChunkDelay); err != nil {
				return nil, Summary{}, err
			}
		}
	}

	return records, summary, nil
}

func (s *Scanner) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	var logs []types.Log
	err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = s.source.FilterLogs(ctx, fromBlock, toBlock, s.cfg.Addresses, s.cfg.Topic0)
		if err != nil {
			s.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func (s *Scanner) isDuplicate(log types.Log) bool {
	id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
	if _, ok := s.seen[id]; ok {
		return true
	}
	s.seen[id] = struct{}{}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func buildLogRecord(chainID uint64, log types.Log, ingestedAt time.Time) model.LogRecord {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}

	return model.LogRecord{
		ChainID:     chainID,
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash.Hex(),
		TxHash:      log.TxHash.Hex(),
		TxIndex:     uint64(log.TxIndex),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(log.Data),
		Removed:     log.Removed,
		IngestedAt:  ingestedAt.UTC().Format(time.RFC3339Nano),
	}
}

package scan

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type fakeSource struct {
	chainID *big.Int
	latest  uint64
	fail    map[uint64]bool // keyed by chunk fromBlock
	logs    map[uint64][]types.Log
	calls   []BlockRange
}

func (f *fakeSource) ChainID(ctx context.Context) (*big.Int, error) {
	return f.chainID, nil
}

func (f *fakeSource) BlockNumber(ctx context.Context) (uint64, error) {
	return f.latest, nil
}

func (f *fakeSource) FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error) {
	f.calls = append(f.calls, BlockRange{From: fromBlock, To: toBlock})
	if f.fail[fromBlock] {
		return nil, fmt.Errorf("rpc unavailable")
	}
	return f.logs[fromBlock], nil
}

func fakeLog(block uint64, index uint) types.Log {
	return types.Log{
		Address:     common.HexToAddress("0x9999999999999999999999999999999999999999"),
		Topics:      []common.Hash{common.HexToHash("0xabc")},
		BlockNumber: block,
		TxHash:      common.HexToHash(fmt.Sprintf("0x%x", block*1000+uint64(index))),
		Index:       index,
	}
}

func scanConfig(from, to, chunk uint64) Config {
	return Config{
		FromBlock: from,
		ToBlock:   to,
		Addresses: []common.Address{common.HexToAddress("0x9999999999999999999999999999999999999999")},
		ChunkSize: chunk,
	}
}

func TestScannerSequentialChunks(t *testing.T) {
	source := &fakeSource{
		chainID: big.NewInt(1),
		logs: map[uint64][]types.Log{
			100: {fakeLog(100, 0), fakeLog(101, 1)},
			102: {fakeLog(103, 0)},
		},
	}

	scanner := NewScanner(scanConfig(100, 103, 2), source, nil, nil)
	records, summary, err := scanner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	wantCalls := []BlockRange{{From: 100, To: 101}, {From: 102, To: 103}}
	if len(source.calls) != len(wantCalls) {
		t.Fatalf("call count mismatch: %+v", source.calls)
	}
	for i, call := range source.calls {
		if call != wantCalls[i] {
			t.Fatalf("chunk %d out of order: %+v", i, call)
		}
	}

	if summary.Chunks != 2 || summary.Logs != 3 || len(summary.MissingRanges) != 0 {
		t.Fatalf("summary mismatch: %+v", summary)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].BlockNumber < records[i-1].BlockNumber {
			t.Fatalf("records not in non-decreasing block order")
		}
	}
	if records[0].ChainID != 1 {
		t.Fatalf("chain id not stamped: %+v", records[0])
	}
}

func TestScannerFailedChunkSkippedAndRecorded(t *testing.T) {
	source := &fakeSource{
		chainID: big.NewInt(1),
		fail:    map[uint64]bool{102: true},
		logs: map[uint64][]types.Log{
			100: {fakeLog(100, 0)},
			104: {fakeLog(104, 0)},
		},
	}

	scanner := NewScanner(scanConfig(100, 105, 2), source, nil, nil)
	records, summary, err := scanner.Run(context.Background())
	if err != nil {
		t.Fatalf("failed chunk must not abort the run: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if len(summary.MissingRanges) != 1 || summary.MissingRanges[0] != (BlockRange{From: 102, To: 103}) {
		t.Fatalf("missing range not recorded: %+v", summary.MissingRanges)
	}
	if summary.FetchErrors != 1 || summary.FirstError == "" {
		t.Fatalf("fetch error not tallied: %+v", summary)
	}
}

func TestScannerResolvesLatestBlock(t *testing.T) {
	source := &fakeSource{
		chainID: big.NewInt(1),
		latest:  101,
		logs:    map[uint64][]types.Log{100: {fakeLog(100, 0)}},
	}

	scanner := NewScanner(scanConfig(100, 0, 10), source, nil, nil)
	_, summary, err := scanner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(source.calls) != 1 || source.calls[0] != (BlockRange{From: 100, To: 101}) {
		t.Fatalf("latest block not resolved: %+v", source.calls)
	}
	if summary.Logs != 1 {
		t.Fatalf("summary mismatch: %+v", summary)
	}
}

func TestScannerDeduplicatesLogs(t *testing.T) {
	dup := fakeLog(100, 0)
	source := &fakeSource{
		chainID: big.NewInt(1),
		logs:    map[uint64][]types.Log{100: {dup, dup}},
	}

	scanner := NewScanner(scanConfig(100, 100, 10), source, nil, nil)
	records, _, err := scanner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("duplicate log not dropped: %d records", len(records))
	}
}

func TestScannerEmptyRange(t *testing.T) {
	source := &fakeSource{chainID: big.NewInt(1)}

	scanner := NewScanner(scanConfig(200, 100, 10), source, nil, nil)
	records, summary, err := scanner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(records) != 0 || summary.Chunks != 0 {
		t.Fatalf("expected empty scan: %d records, %+v", len(records), summary)
	}
}

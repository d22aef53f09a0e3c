package config

import (
	"time"

	"github.com/spf13/pflag"
)

// DepositsConfig holds configuration for the deposits report command.
type DepositsConfig struct {
	Endpoints    []string
	Contract     string
	FromBlock    uint64
	ToBlock      uint64
	ChunkSize    uint64
	ChunkDelay   time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	FlatOut      string
	GroupedOut   string
	RawOut       string
	LogLevel     string
}

// LoadDeposits merges config file, environment variables, and flags.
func LoadDeposits(cfgFile string, flags *pflag.FlagSet) (DepositsConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"chunk-size":    uint64(2000),
		"chunk-delay":   200 * time.Millisecond,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"flat-out":      "./data/deposits.csv",
		"grouped-out":   "./data/deposits_by_user.csv",
		"log-level":     "info",
	})
	if err != nil {
		return DepositsConfig{}, err
	}

	cfg := DepositsConfig{
		Endpoints:    getStringSlice(v, "rpc"),
		Contract:     v.GetString("contract"),
		FromBlock:    v.GetUint64("from"),
		ToBlock:      v.GetUint64("to"),
		ChunkSize:    v.GetUint64("chunk-size"),
		ChunkDelay:   v.GetDuration("chunk-delay"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		FlatOut:      v.GetString("flat-out"),
		GroupedOut:   v.GetString("grouped-out"),
		RawOut:       v.GetString("raw-out"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

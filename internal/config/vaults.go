package config

import (
	"time"

	"github.com/spf13/pflag"
)

// VaultsConfig holds configuration for the vault balance report command.
type VaultsConfig struct {
	Endpoints    []string
	Vaults       []string
	Excluded     string
	FromBlock    uint64
	ToBlock      uint64
	ChunkSize    uint64
	ChunkDelay   time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	OutDir       string
	RawOut       string
	LogLevel     string
}

// LoadVaults merges config file, environment variables, and flags.
func LoadVaults(cfgFile string, flags *pflag.FlagSet) (VaultsConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"chunk-size":    uint64(2000),
		"chunk-delay":   200 * time.Millisecond,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"out-dir":       "./data",
		"log-level":     "info",
	})
	if err != nil {
		return VaultsConfig{}, err
	}

	cfg := VaultsConfig{
		Endpoints:    getStringSlice(v, "rpc"),
		Vaults:       getStringSlice(v, "vault"),
		Excluded:     v.GetString("excluded"),
		FromBlock:    v.GetUint64("from"),
		ToBlock:      v.GetUint64("to"),
		ChunkSize:    v.GetUint64("chunk-size"),
		ChunkDelay:   v.GetDuration("chunk-delay"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		OutDir:       v.GetString("out-dir"),
		RawOut:       v.GetString("raw-out"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

package engine

import (
	"runtime"

	"github.com/yokoncy/pedsa/internal/embed"
)

// Config holds the engine's tunable construction parameters.
type Config struct {
	IndexPath   string
	PayloadPath string

	Embedder embed.Embedder
	Workers  int
	Verbose  bool

	ChaosMaxDistance int
	ChaosTopN        int
}

// DefaultConfig returns the engine's default configuration: an
// in-process store under "pedsa_index.bin"/"pedsa_payload.bin", no
// embedder (rational-track-only retrieval), one worker per CPU.
func DefaultConfig() Config {
	return Config{
		IndexPath:        "pedsa_index.bin",
		PayloadPath:      "pedsa_payload.bin",
		Embedder:         embed.NoOp{},
		Workers:          runtime.NumCPU(),
		Verbose:          false,
		ChaosMaxDistance: 255,
		ChaosTopN:        5000,
	}
}

// Option is a functional option for New.
type Option func(*Config)

// WithStoragePaths overrides the index/payload file locations.
func WithStoragePaths(indexPath, payloadPath string) Option {
	return func(c *Config) {
		c.IndexPath = indexPath
		c.PayloadPath = payloadPath
	}
}

// WithEmbedder enables the chaos track by supplying an Embedder.
func WithEmbedder(e embed.Embedder) Option {
	return func(c *Config) {
		c.Embedder = e
	}
}

// WithWorkers overrides the retrieval/scan worker pool size.
func WithWorkers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Workers = n
		}
	}
}

// WithVerbose enables per-stage debug logging.
func WithVerbose(verbose bool) Option {
	return func(c *Config) {
		c.Verbose = verbose
	}
}

// WithChaosScanBudget sets Config.ChaosMaxDistance and Config.ChaosTopN.
// The retrieval pipeline's S9 stage does not read these fields; it
// always uses its fixed cutoff of 255 bits and cap of 5,000 survivors.
func WithChaosScanBudget(maxDistance, topN int) Option {
	return func(c *Config) {
		c.ChaosMaxDistance = maxDistance
		c.ChaosTopN = topN
	}
}

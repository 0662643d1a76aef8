package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yokoncy/pedsa/internal/engine"
)

// seedProfile names one of the preserved dataset-size selectors. The
// actual seed data is loaded by an external collaborator; pedsa only
// threads the selection through to that hook.
type seedProfile string

const (
	seedNone    seedProfile = ""
	seedSmall   seedProfile = "small"
	seed10M     seedProfile = "10m"
	seed100M    seedProfile = "100m"
	seedMillion seedProfile = "million"
	seedV3      seedProfile = "v3"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	indexPath   string
	payloadPath string
	workers     int
	verbose     bool

	small   bool
	tenM    bool
	hundred bool
	million bool
	v3      bool
}

func (f *rootFlags) profile() seedProfile {
	switch {
	case f.small:
		return seedSmall
	case f.tenM:
		return seed10M
	case f.hundred:
		return seed100M
	case f.million:
		return seedMillion
	case f.v3:
		return seedV3
	default:
		return seedNone
	}
}

func (f *rootFlags) open() (*engine.Engine, error) {
	opts := []engine.Option{
		engine.WithStoragePaths(f.indexPath, f.payloadPath),
		engine.WithVerbose(f.verbose),
	}
	if f.workers > 0 {
		opts = append(opts, engine.WithWorkers(f.workers))
	}
	e, err := engine.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("open engine: %w", err)
	}
	if p := f.profile(); p != seedNone {
		seedHook(e, p)
	}
	return e, nil
}

// seedHook is where an external seed-data loader would hydrate the
// engine for the selected dataset size. Seeding itself is out of
// scope here.
func seedHook(e *engine.Engine, profile seedProfile) {}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "pedsa",
		Short: "Partitioned-fingerprint associative memory engine",
		Long: `pedsa drives the two-layer ontology/memory graph and chaos-fingerprint
store described by the PEDSA engine: ingest features and events, compile
the keyword/temporal/affective indexes, and run spreading-activation
retrieval against them.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.indexPath, "index", "pedsa_index.bin", "path to the mmap'd index file")
	pf.StringVar(&flags.payloadPath, "payload", "pedsa_payload.bin", "path to the payload file")
	pf.IntVar(&flags.workers, "workers", 0, "worker pool size (0 = runtime.NumCPU())")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable per-stage debug logging")

	pf.BoolVar(&flags.small, "small", false, "select the small seed profile")
	pf.BoolVar(&flags.tenM, "10m", false, "select the 10m seed profile")
	pf.BoolVar(&flags.hundred, "100m", false, "select the 100m seed profile")
	pf.BoolVar(&flags.million, "million", false, "select the million seed profile")
	pf.BoolVar(&flags.v3, "v3", false, "select the v3 seed profile")

	root.AddCommand(
		newIngestCmd(flags),
		newCompileCmd(flags),
		newRetrieveCmd(flags),
		newPersistCmd(flags),
		newStatsCmd(flags),
	)

	return root
}

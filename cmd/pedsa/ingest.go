package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// ingestFieldCount is the number of fields in one tab-separated record:
//
//	feature\t<id>\t<word>
//	event\t<id>\t<summary>
const ingestFieldCount = 3

func newIngestCmd(flags *rootFlags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load feature and event records into the engine",
		Long: `Reads tab-separated records, one per line, in the form
"feature<TAB>id<TAB>word" or "event<TAB>id<TAB>summary", and calls
add_feature/add_event for each. Reads from --file, or stdin if unset.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.open()
			if err != nil {
				return err
			}
			defer e.Close()

			var r io.Reader = os.Stdin
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open %s: %w", file, err)
				}
				defer f.Close()
				r = f
			}

			features, events, err := ingest(cmd.Context(), e, r)
			if err != nil {
				return err
			}
			if err := e.Persist(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %d features, %d events\n", features, events)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the ingest file (default: stdin)")
	return cmd
}

func ingest(ctx context.Context, e interface {
	AddFeature(id int64, keyword string)
	AddEvent(ctx context.Context, id int64, summary string, chaosVec []float32) error
}, r io.Reader) (features, events int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		parts := strings.SplitN(text, "\t", ingestFieldCount)
		if len(parts) != ingestFieldCount {
			return features, events, fmt.Errorf("ingest: line %d: expected %d tab-separated fields, got %d", line, ingestFieldCount, len(parts))
		}

		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return features, events, fmt.Errorf("ingest: line %d: invalid id %q: %w", line, parts[1], err)
		}

		switch parts[0] {
		case "feature":
			e.AddFeature(id, parts[2])
			features++
		case "event":
			if err := e.AddEvent(ctx, id, parts[2], nil); err != nil {
				return features, events, fmt.Errorf("ingest: line %d: %w", line, err)
			}
			events++
		default:
			return features, events, fmt.Errorf("ingest: line %d: unknown record kind %q", line, parts[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return features, events, fmt.Errorf("ingest: scan: %w", err)
	}
	return features, events, nil
}

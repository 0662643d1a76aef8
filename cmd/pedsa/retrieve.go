package main

import (
	"fmt"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newRetrieveCmd(flags *rootFlags) *cobra.Command {
	var refTime int64
	var chaosLevel float64

	cmd := &cobra.Command{
		Use:   "retrieve QUERY",
		Short: "Run spreading-activation retrieval against the compiled store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.open()
			if err != nil {
				return err
			}
			defer e.Close()

			results, err := e.Retrieve(cmd.Context(), args[0], refTime, chaosLevel)
			if err != nil {
				return err
			}

			width := terminalWidth()
			summaryWidth := width - 24
			if summaryWidth < 16 {
				summaryWidth = 16
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"rank", "event_id", "score", "summary"})
			table.SetAutoWrapText(false)

			for i, r := range results {
				summary, _ := e.NodeContent(r.EventID)
				summary = runewidth.Truncate(summary, summaryWidth, "...")
				table.Append([]string{
					strconv.Itoa(i + 1),
					strconv.FormatInt(r.EventID, 10),
					fmt.Sprintf("%.4f", r.Score),
					summary,
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().Int64Var(&refTime, "ref-time", 0, "reference unix timestamp for relative-time/decay scoring (0 = fallback now)")
	cmd.Flags().Float64Var(&chaosLevel, "chaos-level", 0, "chaos-track weight in [0,1]; 0 disables the chaos track")

	return cmd
}

package main

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show node and buffer counts for the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.open()
			if err != nil {
				return err
			}
			defer e.Close()

			stats := e.Stats()

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"metric", "value"})
			table.SetColMinWidth(0, minMetricColWidth(terminalWidth()))
			table.Append([]string{"graph nodes", strconv.Itoa(stats.GraphNodes)})
			table.Append([]string{"store nodes", strconv.Itoa(stats.StoreNodes)})
			table.Append([]string{"tombstoned rows", strconv.Itoa(stats.TombstonedRows)})
			table.Render()
			return nil
		},
	}
}

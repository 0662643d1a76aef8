package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompileCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compile",
		Short: "Rebuild the keyword automaton and inverted indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.open()
			if err != nil {
				return err
			}
			defer e.Close()

			e.Compile()
			fmt.Fprintf(cmd.OutOrStdout(), "compiled: %d nodes indexed\n", e.NodeCount())
			return nil
		},
	}
}

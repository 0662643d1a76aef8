package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPersistCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "persist",
		Short: "Flush the hot buffer to the index and payload files",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.open()
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.Persist(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "persisted")
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pmr "github.com/goliatone/go-pmr"
)

func newVersionCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pmr version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "pmr", pmr.Version)
		},
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/wayfinder"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of wayfinder",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wayfinder version %s\n", strings.TrimSpace(wayfinder.Version))
		},
	}
}

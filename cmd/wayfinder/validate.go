package main

import (
	"fmt"

	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/aretw0/wayfinder/internal/validator"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [flow]",
		Short: "Check the flow for consistency",
		Long: `Reports dangling edges, unwired choices and paths, dead ends and steps
unreachable from the start. Warnings fail the check only with --strict.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			strict, _ := cmd.Flags().GetBool("strict")

			doc, err := cli.LoadDocument(cmd.Context(), flowArg(args, cfg))
			if err != nil {
				return err
			}
			report, err := validator.ValidateDocument(doc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, issue := range report.Issues {
				fmt.Fprintln(out, issue.String())
			}
			if err := report.Err(strict); err != nil {
				return err
			}
			fmt.Fprintf(out, "Flow is valid (%d warnings).\n", len(report.Warnings()))
			return nil
		},
	}
	cmd.Flags().Bool("strict", false, "Treat warnings as errors")
	return cmd
}

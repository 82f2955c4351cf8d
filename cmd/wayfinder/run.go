package main

import (
	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flow]",
		Short: "Run a flow interactively",
		Long: `Walks a flow in the terminal. The flow is a JSON or YAML file, a
directory holding flow.yaml or flow.json, or an http(s) URL.

With --session the run is persisted and resumed on the next invocation.
With --watch the flow is reloaded whenever the file changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			opts := cli.RunOptions{
				FlowPath: flowArg(args, cfg),
				Debug:    debugEnabled(cmd),
				Config:   cfg,
				In:       cmd.InOrStdin(),
				Out:      cmd.OutOrStdout(),
			}
			opts.SessionID, _ = flags.GetString("session")
			opts.Start, _ = flags.GetString("start")
			opts.Watch, _ = flags.GetBool("watch")
			opts.JSON, _ = flags.GetBool("json")
			opts.Fresh, _ = flags.GetBool("fresh")
			opts.NoBanner, _ = flags.GetBool("no-banner")
			return cli.Execute(opts)
		},
	}

	cmd.Flags().StringP("session", "s", "", "Persist the run under this session id")
	cmd.Flags().String("start", "", "Start at this step instead of the document start")
	cmd.Flags().BoolP("watch", "w", false, "Reload the flow when the file changes")
	cmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	cmd.Flags().Bool("fresh", false, "Discard the stored session before running")
	cmd.Flags().Bool("no-banner", false, "Do not print the banner")
	return cmd
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage persisted runs",
		Long:  `List, inspect and remove the runs stored in the session backend.`,
	}
	cmd.AddCommand(newSessionLsCmd(), newSessionInspectCmd(), newSessionRmCmd())
	return cmd
}

// withPersistence opens the configured backend for the duration of fn.
func withPersistence(cmd *cobra.Command, fn func(p *cli.Persistence) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cli.OpenPersistence(cfg.Session)
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(p)
}

func newSessionLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List all sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPersistence(cmd, func(p *cli.Persistence) error {
				sessions, err := p.Store.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("error listing sessions: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(sessions) == 0 {
					fmt.Fprintln(out, "No sessions found.")
					return nil
				}
				fmt.Fprintln(out, "Sessions:")
				for _, s := range sessions {
					fmt.Fprintln(out, "- "+s)
				}
				return nil
			})
		},
	}
}

func newSessionInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <session-id>",
		Short: "Print the stored state of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := args[0]
			return withPersistence(cmd, func(p *cli.Persistence) error {
				state, err := p.Store.Load(cmd.Context(), sessionID)
				if err != nil {
					return fmt.Errorf("error loading session '%s': %w", sessionID, err)
				}
				data, err := json.MarshalIndent(state, "", "  ")
				if err != nil {
					return fmt.Errorf("error marshaling state: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			})
		},
	}
}

func newSessionRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <session-id>...",
		Short: "Remove one or more sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			if all == (len(args) > 0) {
				return errors.New("pass session ids or --all, not both")
			}
			return withPersistence(cmd, func(p *cli.Persistence) error {
				ids := args
				if all {
					var err error
					if ids, err = p.Store.List(cmd.Context()); err != nil {
						return fmt.Errorf("error listing sessions: %w", err)
					}
				}

				out := cmd.OutOrStdout()
				var errs []error
				for _, sessionID := range ids {
					if err := cli.ResetSession(cmd.Context(), p.Store, sessionID); err != nil {
						errs = append(errs, err)
						continue
					}
					fmt.Fprintf(out, "Removed session '%s'\n", sessionID)
				}
				return errors.Join(errs...)
			})
		},
	}
	cmd.Flags().Bool("all", false, "Remove every session")
	return cmd
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/aretw0/wayfinder/internal/presentation/graph"
	"github.com/aretw0/wayfinder/pkg/document"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [flow]",
		Short: "Export the flow as a Mermaid diagram",
		Long: `Outputs a Mermaid flowchart of the flow. With --session the steps
visited by that run are highlighted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			doc, err := cli.LoadDocument(cmd.Context(), flowArg(args, cfg))
			if err != nil {
				return err
			}
			g, err := doc.Graph()
			if err != nil {
				return err
			}

			var overlay *graph.GraphOverlay
			if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
				p, err := cli.OpenPersistence(cfg.Session)
				if err != nil {
					return err
				}
				defer p.Close()
				state, err := p.Store.Load(cmd.Context(), sessionID)
				if err != nil {
					return fmt.Errorf("error loading session '%s': %w", sessionID, err)
				}
				overlay = graph.OverlayOf(*state)
			}

			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
			return nil
		},
	}
	cmd.Flags().StringP("session", "s", "", "Highlight the path of this session")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [flow]",
		Short: "Re-encode the flow document as JSON or YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			format, err := document.ParseFormat(name)
			if err != nil {
				return err
			}
			doc, err := cli.LoadDocument(cmd.Context(), flowArg(args, cfg))
			if err != nil {
				return err
			}
			return writeDocument(cmd, doc, format, output)
		},
	}
	cmd.Flags().StringP("format", "f", "yaml", "Output format: json or yaml")
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	return cmd
}

// writeDocument encodes doc to the output file, or stdout when output is empty.
func writeDocument(cmd *cobra.Command, doc *document.Document, format document.Format, output string) error {
	if output == "" {
		return doc.Encode(cmd.OutOrStdout(), format)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := doc.Encode(f, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
	return nil
}

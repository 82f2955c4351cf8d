package main

import (
	"github.com/aretw0/wayfinder/internal/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wayfinder",
		Short: "Wayfinder walks branching decision flows",
		Long: `Wayfinder runs decision flows made of informational, single-choice,
multi-choice and terminal steps, authored as JSON or YAML documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (default ./"+config.DefaultFile+")")
	pf.Bool("debug", false, "Enable debug logging")
	pf.String("session-backend", "", "Session backend: file, redis or memory")
	pf.String("session-dir", "", "Directory holding file sessions")
	pf.String("redis", "", "Redis URL for shared sessions (implies --session-backend=redis)")

	root.AddCommand(
		newRunCmd(),
		newValidateCmd(),
		newGraphCmd(),
		newExportCmd(),
		newServeCmd(),
		newMCPCmd(),
		newSessionCmd(),
		newCatalogCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig resolves the configuration and applies the persistent flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("redis") {
		cfg.Session.RedisURL, _ = flags.GetString("redis")
		cfg.Session.Backend = "redis"
	}
	if flags.Changed("session-backend") {
		cfg.Session.Backend, _ = flags.GetString("session-backend")
	}
	if flags.Changed("session-dir") {
		cfg.Session.Dir, _ = flags.GetString("session-dir")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// flowArg returns the flow named on the command line, else the configured one.
func flowArg(args []string, cfg config.Config) string {
	if len(args) > 0 {
		return args[0]
	}
	if cfg.Flow != "" {
		return cfg.Flow
	}
	return "."
}

func debugEnabled(cmd *cobra.Command) bool {
	debug, _ := cmd.Flags().GetBool("debug")
	return debug
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/aretw0/wayfinder/internal/config"
	wfhttp "github.com/aretw0/wayfinder/pkg/adapters/http"
	"github.com/aretw0/wayfinder/pkg/observability"
	"github.com/aretw0/wayfinder/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [flow]",
		Short: "Start the HTTP server",
		Long: `Serves runs of one flow over a JSON HTTP API. Runs live in the session
backend, so several instances can share a Redis backend.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
			}
			return serve(cmd, flowArg(args, cfg), cfg)
		},
	}
	cmd.Flags().StringP("addr", "a", "", "Address to listen on (default from config, :8080)")
	return cmd
}

func serve(cmd *cobra.Command, flow string, cfg config.Config) error {
	// Servers always log JSON.
	cfg.Log.Format = "json"
	logger := cli.NewLogger(cfg.Log, debugEnabled(cmd))

	engineOpts := cli.EngineOptions{Logger: logger}
	var reg *prometheus.Registry
	if cfg.Server.Metrics {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		engineOpts.Metrics = observability.NewMetrics(reg)
	}

	engine, err := cli.CreateEngine(cmd.Context(), flow, engineOpts)
	if err != nil {
		return err
	}

	p, err := cli.OpenPersistence(cfg.Session)
	if err != nil {
		return err
	}
	defer p.Close()

	managerOpts := []session.Option{
		session.WithLogger(logger),
		session.WithLockTTL(cfg.Session.LockTTL),
	}
	if p.Locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(p.Locker))
	}
	sessions := session.NewManager(p.Store, managerOpts...)

	serverOpts := []wfhttp.Option{wfhttp.WithLogger(logger)}
	if reg != nil {
		serverOpts = append(serverOpts,
			wfhttp.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
			wfhttp.WithSessionCounter(engineOpts.Metrics.SessionsStarted),
		)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           wfhttp.NewHandler(engine, sessions, serverOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "flow", engine.Name, "backend", cfg.Session.Backend)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("server stopped gracefully")
		return nil
	}
}

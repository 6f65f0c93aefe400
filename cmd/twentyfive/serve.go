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

	"github.com/aretw0/twentyfive"
	"github.com/aretw0/twentyfive/internal/metrics"
	"github.com/aretw0/twentyfive/internal/presentation/tui"
	httpAdapter "github.com/aretw0/twentyfive/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the list service over HTTP. The configured instance is seeded on
startup, every commit is pushed to /instances/{instance}/events subscribers and,
when metrics.addr is set, Prometheus metrics are served on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		streams := httpAdapter.NewStreamManager()
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		app, logger, done, err := openApp(cmd,
			twentyfive.WithHooks(streams.Hooks()),
			twentyfive.WithMetrics(registry),
		)
		if err != nil {
			return err
		}
		defer done()

		cfg := app.Config
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("metrics-addr") {
			cfg.Metrics.Addr, _ = cmd.Flags().GetString("metrics-addr")
		}

		if quiet, _ := cmd.Flags().GetBool("no-banner"); !quiet && tui.IsTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr)
		}

		if err := app.Seed(cmd.Context()); err != nil {
			return fmt.Errorf("failed to seed %s: %w", cfg.Instance, err)
		}

		handler, err := httpAdapter.NewHandler(app.Service,
			httpAdapter.WithStreams(streams),
			httpAdapter.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: handler,
		}
		var metricsSrv *http.Server
		if cfg.Metrics.Addr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(registry))
			metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		}

		// Channel to listen for errors coming from the listeners.
		serverErrors := make(chan error, 2)

		go func() {
			logger.Info("Starting Twentyfive Server", "address", srv.Addr, "instance", cfg.Instance, "backend", cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()
		if metricsSrv != nil {
			go func() {
				logger.Info("Serving metrics", "address", metricsSrv.Addr)
				serverErrors <- metricsSrv.ListenAndServe()
			}()
		}

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if metricsSrv != nil {
				metricsSrv.Shutdown(ctx)
			}
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil {
					logger.Error("Error killing server", "error", err)
				}
			}
			logger.Info("Twentyfive Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on (overrides config)")
	serveCmd.Flags().String("metrics-addr", "", "Address of the Prometheus endpoint (overrides config)")
	serveCmd.Flags().Bool("no-banner", false, "Do not print the startup banner")
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/twentyfive"
	"github.com/aretw0/twentyfive/internal/config"
	"github.com/aretw0/twentyfive/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "twentyfive",
	Short: "Twentyfive keeps your 25 goals and your tasks",
	Long: `Twentyfive keeps two ordered, duplicate-free lists per instance (goals and tasks)
and shares them between replicas through a common store.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to the configuration file (default: ./twentyfive.yaml if present)")
	flags.StringP("instance", "i", "", "Instance ID (overrides config)")
	flags.String("backend", "", "Store backend: memory, file, redis or loam (overrides config)")
	flags.String("store-path", "", "Directory of the file or loam backend (overrides config)")
	flags.Int("capacity", 0, "Maximum items per list, 0 for unlimited (overrides config)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

// loadConfig reads the configuration and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("instance") {
		cfg.Instance, _ = flags.GetString("instance")
	}
	if flags.Changed("backend") {
		cfg.Store.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("store-path") {
		cfg.Store.Path, _ = flags.GetString("store-path")
	}
	if flags.Changed("capacity") {
		cfg.Capacity, _ = flags.GetInt("capacity")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	return cfg, cfg.Validate()
}

// newLogger builds the process logger from the configuration.
func newLogger(cfg config.Config) (*slog.Logger, io.Closer, error) {
	level := logging.ParseLevel(cfg.Log.Level)
	if cfg.Log.File != "" {
		return logging.NewWithFile(level, cfg.Log.File)
	}
	return logging.New(level), io.NopCloser(nil), nil
}

// openApp loads the configuration and wires the service. The returned
// function releases everything that was opened.
func openApp(cmd *cobra.Command, opts ...twentyfive.Option) (*twentyfive.App, *slog.Logger, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, logCloser, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts = append([]twentyfive.Option{twentyfive.WithLogger(logger)}, opts...)
	app, err := twentyfive.Open(ctx, cfg, opts...)
	if err != nil {
		logCloser.Close()
		return nil, nil, nil, err
	}

	return app, logger, func() {
		if err := app.Close(); err != nil {
			logger.Warn("Failed to close store", "error", err)
		}
		logCloser.Close()
	}, nil
}

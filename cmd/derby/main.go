// Package main provides the derby command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/derby-sim/internal/config"
	"github.com/yourusername/derby-sim/internal/logger"
)

// Version is set at build time
var Version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
	seed       int64
	jsonOutput bool
}

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "derby",
		Short:         "Racehorse season simulator",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigPath, "Path to config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")
	root.PersistentFlags().Int64Var(&opts.seed, "seed", 0, "Master random seed (0 uses simulation.seed or the clock)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print JSON instead of tables")

	root.AddCommand(
		newInitCmd(opts),
		newStatusCmd(opts),
		newAdvanceCmd(opts),
		newCalendarCmd(opts),
		newRosterCmd(opts),
		newImportCmd(opts),
		newAllocateCmd(opts),
		newRaceCmd(opts),
		newProjectCmd(opts),
		newServeCmd(opts),
	)
	return root
}

func newLogger(level string) *logrus.Logger {
	return logger.NewLoggerWithOutput(level, os.Getenv("ENVIRONMENT") == "production", os.Stderr)
}

// loadConfigWithSecrets reads the config file, overlays AWS secrets when enabled and validates the result
func loadConfigWithSecrets(ctx context.Context, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.App.LogLevel = opts.logLevel
	}
	if opts.seed != 0 {
		cfg.Simulation.Seed = opts.seed
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		if name := os.Getenv("AWS_SECRET_NAME"); name != "" {
			cfg.Database.AWSSecretName = name
		}
		if region := os.Getenv("AWS_REGION"); region != "" {
			cfg.Database.AWSRegion = region
		}
		if cfg.Database.AWSSecretName == "" {
			return nil, fmt.Errorf("AWS_SECRET_NAME or database.aws_secret_name must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

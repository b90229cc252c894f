package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aquagrade/app"
	"aquagrade/config"
	"aquagrade/logging"
)

type globalOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the aquagrade command tree. Without a subcommand it
// serves the HTTP API.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "aquagrade",
		Short: "AquaGrade - fish quality analysis history",
		Long: `AquaGrade sends fish photos to the analysis service and keeps a
history of the results, with feedback, summaries and CSV/PDF exports.

Run without arguments to start the HTTP API.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "aquagrade.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(analyzeCmd(opts))
	rootCmd.AddCommand(historyCmd(opts))
	rootCmd.AddCommand(statsCmd(opts))
	rootCmd.AddCommand(feedbackCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))

	return rootCmd
}

func serveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *globalOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withApp(ctx, opts, func(a *app.App) error {
		return a.Serve(ctx)
	})
}

// withApp loads config, builds the logger and the app, runs fn and cleans up.
func withApp(ctx context.Context, opts *globalOptions, fn func(a *app.App) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start aquagrade: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()

	return fn(a)
}

// Package commands holds the diaryservice command line.
package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"diary-service/internal/config"
	"diary-service/internal/logging"
)

// globalOptions is filled in by the root command before any subcommand runs.
type globalOptions struct {
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
	logCloser  io.Closer
}

func New() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "diaryservice",
		Short: "Movie diary backend: HTTP API, gRPC lookup and catalog tools.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if opts.logCloser != nil {
				return opts.logCloser.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to a config file (default ./diary.yaml when present)")

	AddCommands(cmd, opts)
	return cmd
}

func AddCommands(topLevel *cobra.Command, opts *globalOptions) {
	addServe(topLevel, opts)
	addMigrate(topLevel, opts)
	addCatalog(topLevel, opts)
	addDiary(topLevel, opts)
}

func (o *globalOptions) load(cmd *cobra.Command) error {
	config.LoadEnvFiles(config.DefaultEnvFiles...)
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	slog.SetDefault(logger)

	o.cfg = cfg
	o.logger = logger
	o.logCloser = closer
	return nil
}

// Package cli implements the memoboard command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/craftkontrol/memoboard/internal/config"
	"github.com/craftkontrol/memoboard/internal/history"
	"github.com/craftkontrol/memoboard/internal/lifecycle"
	"github.com/craftkontrol/memoboard/internal/model"
	"github.com/craftkontrol/memoboard/internal/output"
	"github.com/craftkontrol/memoboard/internal/storage"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagNoColor bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:           "memoboard",
	Short:         "Personal task and reminder assistant",
	Long:          `memoboard keeps track of tasks, medications, notes and shopping lists, with a bounded undo history for every change.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if output.Detect(flagJSON, flagTable, flagCompact) == output.FormatJSON {
			output.JSONError(os.Stdout, "error", err.Error())
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// noopAlarms satisfies the lifecycle alarm hooks for one-shot commands,
// where no scheduler is running.
type noopAlarms struct{}

func (noopAlarms) Schedule(model.Task) error { return nil }
func (noopAlarms) Cancel(string) error       { return nil }

// app bundles the wired components behind every command.
type app struct {
	cfg      config.Config
	repo     *storage.SQLiteRepository
	log      *history.Log
	manager  *lifecycle.Manager
	notebook *lifecycle.Notebook
	undoer   *history.Undoer
	logger   *slog.Logger
}

func openApp() (*app, error) {
	path := flagConfig
	if path == "" {
		path = defaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	log := history.NewLog(repo, logger)
	return &app{
		cfg:      cfg,
		repo:     repo,
		log:      log,
		manager:  lifecycle.NewManager(repo, log, noopAlarms{}, logger),
		notebook: lifecycle.NewNotebook(repo, log, logger),
		undoer:   history.NewUndoer(log, repo),
		logger:   logger,
	}, nil
}

func (a *app) close() {
	if err := a.repo.Close(); err != nil {
		a.logger.Warn("closing store", "error", err)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yml"
	}
	return filepath.Join(home, ".memoboard", "config.yml")
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"notehub/internal/notehub/config"
	"notehub/pkg/logger"
)

const (
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
)

var (
	configPath string
	verbose    bool

	// cfg заполняется в PersistentPreRunE перед запуском любой команды.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "notehub",
	Short: "Browse and edit notes stored in NoteHub",
	Long: `notehub is a terminal client for the NoteHub notes API.
It pages through notes, searches them, and creates or deletes notes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ctx := logger.NewRequestIDContext(cmd.Context(), "")

		loaded, err := config.Load(ctx, configPath)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrLoadConfig, err)
		}

		level := loaded.Logging.Level
		if verbose {
			level = "debug"
		}
		log, err := logger.NewLogger(loaded.Logging.GetEnvironment(), level)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrInitLoggerWithConfig, err)
		}
		logger.SetGlobalLogger(log)

		cfg = loaded
		cmd.SetContext(ctx)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a configuration file (.env or .yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notehub/internal/notehub/app"
	"notehub/internal/notehub/ui"
	"notehub/pkg/logger"
)

// Константы для сообщений об ошибках.
const (
	ErrBrowseFailed  = "browse failed"
	ErrOpenBrowseLog = "failed to open browse log"
)

var browseLogFile string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse notes interactively",
	Long: `Browse shows a page of notes and redraws it whenever something changes.
Typing searches as you go; the arrows switch pages and select notes,
ctrl+n opens the new note form, ctrl+d deletes the selected note.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log, err := browseLogger(browseLogFile)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrOpenBrowseLog, err)
		}
		defer func() { _ = log.Sync() }()
		ctx = logger.NewContext(ctx, log)

		d, err := newDeps(ctx, cfg)
		if err != nil {
			return err
		}
		defer d.close(context.WithoutCancel(ctx), cfg)

		ctrl := app.NewController(ctx, d.notes, cfg.UI, d.perPage)
		defer ctrl.Close()

		browser := ui.NewBrowser(ctx, ctrl, ui.NewRenderer(os.Stdout))
		defer browser.Close()

		program := tea.NewProgram(browser, tea.WithContext(ctx), tea.WithAltScreen())
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("%s: %w", ErrBrowseFailed, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().StringVar(&browseLogFile, "log-file", "", "Write logs to this file while the screen is open (default: discard)")
}

// browseLogger не пишет в терминал, занятый экраном.
func browseLogger(path string) (*logger.Logger, error) {
	if path == "" {
		return logger.NewNop(), nil
	}

	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	zl, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.FromZap(zl), nil
}

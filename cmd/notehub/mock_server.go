package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notehub/internal/notehub/mockapi"
	"notehub/pkg/logger"
	"notehub/pkg/shutdown"
)

// Константы сообщений mock API.
const (
	LogMockStarted      = "mock api started"
	LogMockShutdownDone = "mock api shutdown complete"
	LogStoppingMock     = "stopping mock api"
	ErrStartMockServer  = "failed to start mock api"
)

var mockSeed int

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run an in-memory NoteHub API for local development",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		log := logger.Log(ctx)

		seed := cfg.Mock.Seed
		if cmd.Flags().Changed("seed") {
			seed = mockSeed
		}
		store := mockapi.NewStore()
		store.Seed(seed)

		srv := mockapi.New(cfg.Mock, store, log)

		serveErr := make(chan error, 1)
		go func() {
			if err := srv.Listen(cfg.Mock.GetAddress()); err != nil {
				log.Error(ctx, ErrStartMockServer, zap.Error(err))
				serveErr <- err
				cancel()
			}
		}()

		log.Info(ctx, LogMockStarted,
			zap.String("address", cfg.Mock.GetAddress()),
			zap.Bool("auth", cfg.Mock.Token != ""),
			zap.Int("seed", seed))

		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingMock)
				return srv.Shutdown(ctx)
			},
		)
		log.Info(ctx, LogMockShutdownDone)

		select {
		case err := <-serveErr:
			return err
		default:
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(mockServerCmd)
	mockServerCmd.Flags().IntVar(&mockSeed, "seed", 0, "Number of sample notes to create (overrides NOTEHUB_MOCK_SEED)")
}

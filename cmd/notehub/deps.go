package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notehub/internal/notehub/adapters/cache"
	"notehub/internal/notehub/adapters/rest"
	"notehub/internal/notehub/app/services"
	"notehub/internal/notehub/config"
	"notehub/internal/notehub/resilience"
	"notehub/pkg/logger"
	"notehub/pkg/shutdown"
)

// Константы сообщений сборки зависимостей.
const (
	LogInitClient          = "initializing NoteHub client"
	LogInitCache           = "initializing shared cache"
	LogCacheDisabled       = "shared cache unavailable, continuing without it"
	LogClosingCache        = "closing shared cache"
	ErrCreateNotehubClient = "failed to create NoteHub client"
)

// deps собранный api.NotesClient и хуки освобождения ресурсов.
type deps struct {
	notes   *services.NotesServiceImpl
	perPage int
	hooks   []shutdown.Hook
}

func newDeps(ctx context.Context, cfg *config.Config) (*deps, error) {
	log := logger.Log(ctx)

	log.Debug(ctx, LogInitClient, zap.String("base_url", cfg.API.BaseURL))
	restClient, err := rest.New(cfg.API)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrCreateNotehubClient, err)
	}

	d := &deps{perPage: restClient.PerPage()}
	opts := []services.Option{services.WithPerPage(restClient.PerPage())}

	if cfg.Redis.Enabled {
		log.Debug(ctx, LogInitCache, zap.String("address", cfg.Redis.GetAddress()))
		redisCache, err := cache.NewRedisCache(ctx, &cfg.Redis)
		if err != nil {
			log.Warn(ctx, LogCacheDisabled, zap.Error(err))
		} else {
			opts = append(opts, services.WithSharedCache(redisCache, cfg.Redis.DefaultTTL))
			d.hooks = append(d.hooks, func(ctx context.Context) error {
				logger.Log(ctx).Debug(ctx, LogClosingCache)
				return redisCache.Close()
			})
		}
	}

	res := resilience.FromConfig(config.ServiceName, cfg.Resilience)
	d.notes = services.NewNotesService(restClient, res, opts...)
	return d, nil
}

// close освобождает ресурсы в рамках таймаута остановки.
func (d *deps) close(ctx context.Context, cfg *config.Config) {
	if len(d.hooks) == 0 {
		return
	}
	shutdown.Run(ctx, cfg.Shutdown.GetTimeout(), d.hooks...)
}

// Package config содержит конфигурацию клиента NoteHub.
package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	pkgconfig "notehub/pkg/config"
	"notehub/pkg/logger"
)

// Константы сообщений для конфигурации.
const (
	ServiceName         = "notehub"
	LogConfigLoaded     = "notehub configuration"
	ErrFailedLoadConfig = "failed to load notehub configuration"
)

// Config представляет полную конфигурацию клиента.
type Config struct {
	API        APIConfig        `yaml:"api"`
	UI         UIConfig         `yaml:"ui"`
	Logging    LoggingConfig    `yaml:"logging"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Redis      RedisConfig      `yaml:"redis"`
	Mock       MockConfig       `yaml:"mock"`
	Shutdown   ShutdownConfig   `yaml:"shutdown"`
}

// Load загружает конфигурацию из окружения и необязательного файла path.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](ctx, ServiceName, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	logger.Log(ctx).Debug(ctx, LogConfigLoaded,
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.Bool("token_set", cfg.API.Token != ""),
		zap.Int("per_page", cfg.API.PerPage),
		zap.Duration("debounce", cfg.UI.Debounce),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Int("retry_max_attempts", cfg.Resilience.RetryMaxAttempts))

	return cfg, nil
}

// GetEnvironment возвращает режим работы логгера.
func (c *LoggingConfig) GetEnvironment() logger.Environment {
	if c.Mode == "development" {
		return logger.Development
	}
	return logger.Production
}

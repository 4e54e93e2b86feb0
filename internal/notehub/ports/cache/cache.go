// Package cache определяет интерфейс общего кэша ответов API.
package cache

import (
	"context"
	"time"
)

// Cache строковое хранилище с TTL и счетчиками.
type Cache interface {
	// Get возвращает значение и false, если ключа нет.
	Get(ctx context.Context, key string) (string, bool, error)

	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Incr атомарно увеличивает счетчик и возвращает новое значение.
	Incr(ctx context.Context, key string) (int64, error)

	Close() error
}

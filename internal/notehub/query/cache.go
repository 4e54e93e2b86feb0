package query

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"notehub/internal/notehub/domain/entities"
	"notehub/pkg/logger"
)

// Константы для логирования.
const (
	LogFetchStarted   = "query fetch started"
	LogFetchFailed    = "query fetch failed"
	LogFetchDiscarded = "query fetch result discarded"
	LogInvalidated    = "query invalidated"
)

// Fetcher загружает данные для ключа.
type Fetcher func(ctx context.Context, key Key) (*entities.FetchNotesResult, error)

// Result снимок состояния ключа.
type Result struct {
	Key    Key
	Status Status
	Data   *entities.FetchNotesResult
	// Err последняя ошибка загрузки; при StatusSuccess данные остались от прошлой загрузки.
	Err error
	// IsPlaceholder - Data принадлежит предыдущему активному ключу.
	IsPlaceholder bool
	IsStale       bool
	IsFetching    bool
	UpdatedAt     time.Time
}

type entry struct {
	data       *entities.FetchNotesResult
	err        error
	updatedAt  time.Time
	stale      bool
	fetching   bool
	generation uint64
}

// Cache хранит записи по ключам. Безопасен для параллельного использования.
type Cache struct {
	fetch     Fetcher
	staleTime time.Duration
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	entries     map[Key]*entry
	active      Key
	hasActive   bool
	placeholder *entities.FetchNotesResult
	listeners   map[uint64]func(Key)
	nextID      uint64
}

// Option настраивает Cache.
type Option func(*Cache)

// WithStaleTime задает возраст, после которого данные считаются устаревшими. 0 - сразу.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) {
		c.staleTime = d
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New создает Cache, загружающий данные через fetch.
func New(fetch Fetcher, opts ...Option) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		fetch:     fetch,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		entries:   make(map[Key]*entry),
		listeners: make(map[uint64]func(Key)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Use делает key активным и запускает загрузку, если данных нет или они устарели.
func (c *Cache) Use(ctx context.Context, key Key) Result {
	c.mu.Lock()
	c.active = key
	c.hasActive = true

	e := c.entries[key]
	if e == nil {
		e = &entry{}
		c.entries[key] = e
	}
	if e.data != nil {
		c.placeholder = e.data
	}
	if !e.fetching && (e.data == nil || c.isStale(e)) {
		c.startFetch(ctx, key, e)
	}
	res := c.result(key)
	c.mu.Unlock()

	return res
}

// Invalidate помечает запись устаревшей; активный ключ загружается заново сразу.
// Загрузка, начатая до инвалидации, будет отброшена.
func (c *Cache) Invalidate(ctx context.Context, key Key) {
	c.mu.Lock()
	e := c.entries[key]
	if e == nil {
		c.mu.Unlock()
		return
	}
	e.stale = true
	refetch := c.hasActive && c.active == key
	if refetch {
		c.startFetch(ctx, key, e)
	} else {
		e.generation++
		e.fetching = false
	}
	c.mu.Unlock()

	logger.Log(ctx).Debug(ctx, LogInvalidated, zap.Stringer("key", key), zap.Bool("refetch", refetch))
	c.notify(key)
}

// Get возвращает текущее состояние key без запуска загрузки.
func (c *Cache) Get(key Key) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result(key)
}

// Active возвращает активный ключ.
func (c *Cache) Active() (Key, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.hasActive
}

// Subscribe регистрирует обработчик изменений. Возвращает функцию отписки.
func (c *Cache) Subscribe(fn func(Key)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Close отменяет загрузки в полете и ждет их завершения.
func (c *Cache) Close() {
	c.cancel()
	c.wg.Wait()
}

// isStale вызывается под mu.
func (c *Cache) isStale(e *entry) bool {
	if e.stale {
		return true
	}
	if e.data == nil {
		return false
	}
	return c.now().Sub(e.updatedAt) >= c.staleTime
}

// startFetch вызывается под mu.
func (c *Cache) startFetch(ctx context.Context, key Key, e *entry) {
	if c.ctx.Err() != nil {
		return
	}
	e.generation++
	e.fetching = true
	if e.data == nil {
		e.err = nil
	}
	gen := e.generation

	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(c.ctx, cancel)

	logger.Log(ctx).Debug(ctx, LogFetchStarted, zap.Stringer("key", key), zap.Uint64("generation", gen))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		defer stop()

		data, err := c.fetch(fetchCtx, key)
		c.complete(fetchCtx, key, gen, data, err)
	}()
}

func (c *Cache) complete(ctx context.Context, key Key, gen uint64, data *entities.FetchNotesResult, err error) {
	log := logger.Log(ctx)

	c.mu.Lock()
	e := c.entries[key]
	if e == nil || e.generation != gen {
		c.mu.Unlock()
		log.Debug(ctx, LogFetchDiscarded, zap.Stringer("key", key), zap.Uint64("generation", gen))
		return
	}

	e.fetching = false
	if err != nil {
		e.err = err
	} else {
		e.data = data
		e.err = nil
		e.stale = false
		e.updatedAt = c.now()
		if c.hasActive && c.active == key {
			c.placeholder = data
		}
	}
	c.mu.Unlock()

	if err != nil {
		log.Warn(ctx, LogFetchFailed, zap.Stringer("key", key), zap.Error(err))
	}
	c.notify(key)
}

// result вызывается под mu.
func (c *Cache) result(key Key) Result {
	res := Result{Key: key, Status: StatusLoading}

	e := c.entries[key]
	if e != nil {
		res.Err = e.err
		res.IsFetching = e.fetching
		res.UpdatedAt = e.updatedAt
	}

	switch {
	case e != nil && e.data != nil:
		res.Status = StatusSuccess
		res.Data = e.data
		res.IsStale = c.isStale(e)
	case e != nil && e.err != nil && !e.fetching:
		res.Status = StatusError
	case c.hasActive && c.active == key && c.placeholder != nil:
		res.Status = StatusSuccess
		res.Data = c.placeholder
		res.IsPlaceholder = true
	}
	return res
}

func (c *Cache) notify(key Key) {
	c.mu.Lock()
	listeners := make([]func(Key), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(key)
	}
}

// Package app содержит контроллер просмотра заметок: страница, поиск с задержкой,
// модальное окно создания и инвалидация кэша после изменений.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"notehub/internal/notehub/config"
	"notehub/internal/notehub/debounce"
	"notehub/internal/notehub/domain/entities"
	"notehub/internal/notehub/ports/api"
	"notehub/internal/notehub/query"
	"notehub/pkg/logger"
)

// Ошибки уровня контроллера.
var (
	ErrInvalidPage = errors.New("page must be at least 1")
)

// Константы для логирования.
const (
	LogSearchApplied  = "controller: search applied"
	LogPageChanged    = "controller: page changed"
	LogNoteCreated    = "controller: note created"
	LogNoteDeleted    = "controller: note deleted"
	LogCreateFailed   = "controller: create note failed"
	LogDeleteFailed   = "controller: delete note failed"
	LogRefreshRequest = "controller: refresh requested"

	ErrorCreateNoteFailed = "failed to create note"
	ErrorDeleteNoteFailed = "failed to delete note"
)

// Controller владеет состоянием экрана заметок.
type Controller struct {
	ctx     context.Context
	client  api.NotesClient
	cache   *query.Cache
	search  *debounce.Debouncer[string]
	perPage int
	reset   bool

	// opMu упорядочивает переходы, которые меняют активный ключ кэша.
	opMu sync.Mutex

	mu              sync.Mutex
	page            int
	searchInput     string
	debouncedSearch string
	modalOpen       bool
	mutationErr     error
	listeners       map[uint64]func(View)
	nextID          uint64

	unsubscribe func()
}

// NewController создает контроллер и начинает загрузку первой страницы.
// ctx задает логгер и время жизни фоновых загрузок.
func NewController(ctx context.Context, client api.NotesClient, cfg config.UIConfig, perPage int) *Controller {
	if perPage <= 0 {
		perPage = entities.DefaultPerPage
	}

	c := &Controller{
		ctx:       ctx,
		client:    client,
		perPage:   perPage,
		reset:     cfg.ResetPageOnSearch,
		page:      1,
		listeners: make(map[uint64]func(View)),
	}
	c.cache = query.New(c.fetch, query.WithStaleTime(cfg.StaleTime))
	c.search = debounce.New(cfg.Debounce, c.applySearch)
	c.unsubscribe = c.cache.Subscribe(func(query.Key) {
		c.emit()
	})

	c.cache.Use(ctx, c.key())
	return c
}

func (c *Controller) fetch(ctx context.Context, key query.Key) (*entities.FetchNotesResult, error) {
	return c.client.ListNotes(ctx, key.Page, key.Search)
}

// key вызывается под mu или до запуска.
func (c *Controller) key() query.Key {
	return query.NotesKey(c.page, c.debouncedSearch)
}

func (c *Controller) currentKey() query.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key()
}

// SetSearch сразу обновляет поле ввода; поиск применяется после паузы.
func (c *Controller) SetSearch(text string) {
	c.mu.Lock()
	c.searchInput = text
	c.mu.Unlock()

	c.emit()
	c.search.Push(text)
}

// FlushSearch применяет ожидающий поиск без паузы.
func (c *Controller) FlushSearch() bool {
	return c.search.Flush()
}

func (c *Controller) applySearch(text string) {
	c.opMu.Lock()
	c.mu.Lock()
	if text == c.debouncedSearch {
		c.mu.Unlock()
		c.opMu.Unlock()
		return
	}
	c.debouncedSearch = text
	if c.reset {
		c.page = 1
	}
	key := c.key()
	c.mu.Unlock()

	c.cache.Use(c.ctx, key)
	c.opMu.Unlock()

	logger.Log(c.ctx).Debug(c.ctx, LogSearchApplied, zap.String("search", text), zap.Int("page", key.Page))
	c.emit()
}

// SetPage выбирает страницу. Страница не ограничивается числом страниц.
func (c *Controller) SetPage(p int) error {
	if p < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, p)
	}

	c.opMu.Lock()
	c.mu.Lock()
	if p == c.page {
		c.mu.Unlock()
		c.opMu.Unlock()
		return nil
	}
	c.page = p
	key := c.key()
	c.mu.Unlock()

	c.cache.Use(c.ctx, key)
	c.opMu.Unlock()

	logger.Log(c.ctx).Debug(c.ctx, LogPageChanged, zap.Int("page", p))
	c.emit()
	return nil
}

// OpenModal открывает окно создания заметки.
func (c *Controller) OpenModal() {
	c.setModal(true)
}

// CloseModal закрывает окно создания заметки.
func (c *Controller) CloseModal() {
	c.setModal(false)
}

func (c *Controller) setModal(open bool) {
	c.mu.Lock()
	c.modalOpen = open
	if open {
		c.mutationErr = nil
	}
	c.mu.Unlock()

	c.emit()
}

// Create отправляет черновик как есть. После успеха страница, открытая при отправке,
// и текущая страница загружаются заново, окно закрывается; после ошибки окно остается открытым.
func (c *Controller) Create(ctx context.Context, values entities.FormValues) (*entities.Note, error) {
	submitted := c.currentKey()
	note, err := c.client.CreateNote(ctx, entities.FormValues{
		Title:   values.Title,
		Content: values.Content,
		Tag:     values.Tag,
	})
	if err != nil {
		logger.Log(ctx).Error(ctx, LogCreateFailed, zap.Error(err))
		c.setMutationErr(err)
		return nil, fmt.Errorf("%s: %w", ErrorCreateNoteFailed, err)
	}

	logger.Log(ctx).Info(ctx, LogNoteCreated, zap.String("id", note.ID))

	c.mu.Lock()
	c.modalOpen = false
	c.mutationErr = nil
	c.mu.Unlock()

	c.invalidate(ctx, submitted)
	return note, nil
}

// Delete удаляет заметку и загружает заново страницу, открытую при удалении, и текущую.
func (c *Controller) Delete(ctx context.Context, id string) (*entities.Note, error) {
	submitted := c.currentKey()
	note, err := c.client.DeleteNote(ctx, id)
	if err != nil {
		logger.Log(ctx).Error(ctx, LogDeleteFailed, zap.String("id", id), zap.Error(err))
		c.setMutationErr(err)
		return nil, fmt.Errorf("%s: %w", ErrorDeleteNoteFailed, err)
	}

	logger.Log(ctx).Info(ctx, LogNoteDeleted, zap.String("id", id))

	c.mu.Lock()
	c.mutationErr = nil
	c.mu.Unlock()

	c.invalidate(ctx, submitted)
	return note, nil
}

// Refresh помечает текущую страницу устаревшей и загружает ее заново.
func (c *Controller) Refresh(ctx context.Context) {
	logger.Log(ctx).Debug(ctx, LogRefreshRequest)
	c.invalidate(ctx)
}

// invalidate помечает устаревшими текущий ключ и ключи extra.
func (c *Controller) invalidate(ctx context.Context, extra ...query.Key) {
	c.opMu.Lock()
	current := c.currentKey()
	c.cache.Invalidate(ctx, current)
	for _, key := range extra {
		if key != current {
			c.cache.Invalidate(ctx, key)
		}
	}
	c.opMu.Unlock()

	c.emit()
}

func (c *Controller) setMutationErr(err error) {
	c.mu.Lock()
	c.mutationErr = err
	c.mu.Unlock()

	c.emit()
}

// View возвращает снимок текущего состояния.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := c.cache.Get(c.key())

	v := View{
		Page:            c.page,
		SearchInput:     c.searchInput,
		DebouncedSearch: c.debouncedSearch,
		ModalOpen:       c.modalOpen,
		MutationError:   c.mutationErr,
		IsPlaceholder:   res.IsPlaceholder,
		IsFetching:      res.IsFetching,
		TotalPages:      res.Data.PageCount(c.perPage),
	}
	v.ShowPagination = v.TotalPages > 1

	switch res.Status {
	case query.StatusLoading:
		v.Status = ViewLoading
	case query.StatusError:
		v.Status = ViewError
		v.Err = res.Err
	case query.StatusSuccess:
		if len(res.Data.Notes) == 0 {
			v.Status = ViewEmpty
		} else {
			v.Status = ViewList
			v.Notes = slices.Clone(res.Data.Notes)
		}
	}
	return v
}

// Subscribe регистрирует обработчик новых снимков. Возвращает функцию отписки.
func (c *Controller) Subscribe(fn func(View)) func() {
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

func (c *Controller) emit() {
	c.mu.Lock()
	listeners := make([]func(View), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	if len(listeners) == 0 {
		return
	}
	v := c.View()
	for _, fn := range listeners {
		fn(v)
	}
}

// Close останавливает таймер поиска и отменяет загрузки в полете.
func (c *Controller) Close() {
	c.search.Stop()
	c.unsubscribe()
	c.cache.Close()
}

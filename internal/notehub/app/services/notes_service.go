// Package services объединяет REST-клиент, отказоустойчивость и общий кэш в один api.NotesClient.
package services

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"notehub/internal/notehub/domain/entities"
	"notehub/internal/notehub/ports/api"
	"notehub/internal/notehub/ports/cache"
	"notehub/internal/notehub/resilience"
	"notehub/pkg/logger"
)

// Константы для логирования.
const (
	LogServiceListNotes  = "notes service: list notes"
	LogServiceGetNote    = "notes service: get note"
	LogServiceCreateNote = "notes service: create note"
	LogServiceDeleteNote = "notes service: delete note"
	LogCacheHit          = "notes service: shared cache hit"
	LogCacheUnavailable  = "notes service: shared cache unavailable"

	ErrorListNotesFailed  = "failed to list notes"
	ErrorGetNoteFailed    = "failed to get note"
	ErrorCreateNoteFailed = "failed to create note"
	ErrorDeleteNoteFailed = "failed to delete note"

	versionKey = "notes:version"
)

// NotesServiceImpl реализует api.NotesClient поверх другого клиента.
type NotesServiceImpl struct {
	client     api.NotesClient
	resilience *resilience.ServiceResilience
	cache      cache.Cache
	cacheTTL   time.Duration
	perPage    int
	group      singleflight.Group
	// epoch растет после каждого изменения; запросы разных эпох не объединяются.
	epoch atomic.Uint64
}

var _ api.NotesClient = (*NotesServiceImpl)(nil)

// Option настраивает NotesServiceImpl.
type Option func(*NotesServiceImpl)

// WithSharedCache включает общий кэш страниц списка.
func WithSharedCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *NotesServiceImpl) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithPerPage задает размер страницы для ключей кэша.
func WithPerPage(perPage int) Option {
	return func(s *NotesServiceImpl) {
		s.perPage = perPage
	}
}

// NewNotesService создает новый экземпляр сервиса заметок.
func NewNotesService(client api.NotesClient, res *resilience.ServiceResilience, opts ...Option) *NotesServiceImpl {
	s := &NotesServiceImpl{
		client:     client,
		resilience: res,
		perPage:    entities.DefaultPerPage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListNotes получает страницу заметок. Одинаковые параллельные запросы разделяют один HTTP-вызов.
func (s *NotesServiceImpl) ListNotes(ctx context.Context, page int, search string) (*entities.FetchNotesResult, error) {
	log := logger.Log(ctx)
	log.Debug(ctx, LogServiceListNotes, zap.Int("page", page), zap.String("search", search))

	shared := context.WithoutCancel(ctx)
	flightKey := strconv.FormatUint(s.epoch.Load(), 10) + "|" + strconv.Itoa(page) + "|" + search
	ch := s.group.DoChan(flightKey, func() (any, error) {
		return s.listNotes(shared, page, search)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			log.Warn(ctx, ErrorListNotesFailed, zap.Error(res.Err))
			return nil, fmt.Errorf("%s: %w", ErrorListNotesFailed, res.Err)
		}
		return cloneResult(res.Val.(*entities.FetchNotesResult)), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", ErrorListNotesFailed, ctx.Err())
	}
}

func (s *NotesServiceImpl) listNotes(ctx context.Context, page int, search string) (*entities.FetchNotesResult, error) {
	key := ""
	if s.cache != nil {
		key = s.pageKey(ctx, page, search)
		if key != "" {
			if cached, ok := s.readPage(ctx, key); ok {
				return cached, nil
			}
		}
	}

	result, err := resilience.Do(ctx, s.resilience, "ListNotes", func() (*entities.FetchNotesResult, error) {
		return s.client.ListNotes(ctx, page, search)
	})
	if err != nil {
		return nil, err
	}

	if key != "" {
		s.writePage(ctx, key, result)
	}
	return result, nil
}

// GetNote получает заметку по ID.
func (s *NotesServiceImpl) GetNote(ctx context.Context, id string) (*entities.Note, error) {
	logger.Log(ctx).Debug(ctx, LogServiceGetNote, zap.String("note_id", id))

	note, err := resilience.Do(ctx, s.resilience, "GetNote", func() (*entities.Note, error) {
		return s.client.GetNote(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorGetNoteFailed, err)
	}
	return note, nil
}

// CreateNote создает заметку и сбрасывает общий кэш страниц.
func (s *NotesServiceImpl) CreateNote(ctx context.Context, draft entities.FormValues) (*entities.Note, error) {
	logger.Log(ctx).Info(ctx, LogServiceCreateNote, zap.String("title", draft.Title), zap.String("tag", string(draft.Tag)))

	note, err := resilience.Do(ctx, s.resilience, "CreateNote", func() (*entities.Note, error) {
		return s.client.CreateNote(ctx, draft)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorCreateNoteFailed, err)
	}

	s.bumpVersion(ctx)
	return note, nil
}

// DeleteNote удаляет заметку и сбрасывает общий кэш страниц.
func (s *NotesServiceImpl) DeleteNote(ctx context.Context, id string) (*entities.Note, error) {
	logger.Log(ctx).Info(ctx, LogServiceDeleteNote, zap.String("note_id", id))

	note, err := resilience.Do(ctx, s.resilience, "DeleteNote", func() (*entities.Note, error) {
		return s.client.DeleteNote(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorDeleteNoteFailed, err)
	}

	s.bumpVersion(ctx)
	return note, nil
}

// pageKey возвращает ключ страницы в текущем поколении кэша или "" при недоступном Redis.
func (s *NotesServiceImpl) pageKey(ctx context.Context, page int, search string) string {
	version, ok, err := s.cache.Get(ctx, versionKey)
	if err != nil {
		logger.Log(ctx).Warn(ctx, LogCacheUnavailable, zap.Error(err))
		return ""
	}
	if !ok {
		version = "0"
	}
	return fmt.Sprintf("notes:v%s:%d:%d:%s", version, s.perPage, page, search)
}

func (s *NotesServiceImpl) readPage(ctx context.Context, key string) (*entities.FetchNotesResult, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var result entities.FetchNotesResult
	if err := sonic.UnmarshalString(raw, &result); err != nil {
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}
	logger.Log(ctx).Debug(ctx, LogCacheHit, zap.String("key", key))
	return &result, true
}

func (s *NotesServiceImpl) writePage(ctx context.Context, key string, result *entities.FetchNotesResult) {
	raw, err := sonic.MarshalString(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		logger.Log(ctx).Warn(ctx, LogCacheUnavailable, zap.Error(err))
	}
}

func (s *NotesServiceImpl) bumpVersion(ctx context.Context) {
	s.epoch.Add(1)
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, versionKey); err != nil {
		logger.Log(ctx).Warn(ctx, LogCacheUnavailable, zap.Error(err))
	}
}

// cloneResult отдает каждому вызывающему собственную копию среза заметок.
func cloneResult(r *entities.FetchNotesResult) *entities.FetchNotesResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Notes = append([]entities.Note(nil), r.Notes...)
	return &out
}

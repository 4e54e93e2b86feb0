package services_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"notehub/internal/notehub/adapters/cache"
	"notehub/internal/notehub/app/services"
	"notehub/internal/notehub/config"
	"notehub/internal/notehub/domain/entities"
	"notehub/internal/notehub/ports/api"
	"notehub/internal/notehub/resilience"
)

type mockNotesClient struct {
	mock.Mock
}

func (m *mockNotesClient) ListNotes(ctx context.Context, page int, search string) (*entities.FetchNotesResult, error) {
	args := m.Called(ctx, page, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FetchNotesResult), args.Error(1)
}

func (m *mockNotesClient) GetNote(ctx context.Context, id string) (*entities.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func (m *mockNotesClient) CreateNote(ctx context.Context, draft entities.FormValues) (*entities.Note, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func (m *mockNotesClient) DeleteNote(ctx context.Context, id string) (*entities.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func noRetry() *resilience.ServiceResilience {
	return resilience.FromConfig("notes", config.ResilienceConfig{
		RetryMaxAttempts:        1,
		BreakerErrorThreshold:   5,
		BreakerTimeout:          time.Second,
		BreakerSuccessThreshold: 1,
	})
}

func newRedis(t *testing.T) *cache.RedisCache {
	t.Helper()

	s := miniredis.RunT(t)
	host, portStr, _ := strings.Cut(s.Addr(), ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c, err := cache.NewRedisCache(context.Background(), &config.RedisConfig{
		Host: host, Port: port, ConnectTimeout: time.Second, ReadTimeout: time.Second,
		WriteTimeout: time.Second, PoolSize: 2, KeyPrefix: "test", DefaultTTL: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func page(ids ...string) *entities.FetchNotesResult {
	notes := make([]entities.Note, 0, len(ids))
	for _, id := range ids {
		notes = append(notes, entities.Note{ID: id, Title: "Note " + id, Tag: entities.TagTodo})
	}
	return &entities.FetchNotesResult{Notes: notes, TotalPages: 1}
}

func TestListNotesPassesThrough(t *testing.T) {
	client := new(mockNotesClient)
	client.On("ListNotes", mock.Anything, 2, "cat").Return(page("a", "b"), nil).Once()

	svc := services.NewNotesService(client, noRetry())

	result, err := svc.ListNotes(context.Background(), 2, "cat")
	require.NoError(t, err)
	assert.Len(t, result.Notes, 2)
	client.AssertExpectations(t)
}

func TestListNotesWrapsErrors(t *testing.T) {
	client := new(mockNotesClient)
	client.On("ListNotes", mock.Anything, 1, "").
		Return(nil, &api.NetworkError{Op: "GET /notes", Err: errors.New("refused")}).Once()

	svc := services.NewNotesService(client, noRetry())

	_, err := svc.ListNotes(context.Background(), 1, "")
	require.ErrorIs(t, err, api.ErrNetwork)
	assert.Contains(t, err.Error(), services.ErrorListNotesFailed)
}

func TestListNotesSharesConcurrentCalls(t *testing.T) {
	release := make(chan time.Time)
	client := new(mockNotesClient)
	client.On("ListNotes", mock.Anything, 1, "x").
		WaitUntil(release).
		Return(page("a"), nil).Once()

	svc := services.NewNotesService(client, noRetry())

	var wg sync.WaitGroup
	results := make([]*entities.FetchNotesResult, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := svc.ListNotes(context.Background(), 1, "x")
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	client.AssertNumberOfCalls(t, "ListNotes", 1)
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, "a", r.Notes[0].ID)
	}
}

func TestSharedCacheServesRepeatedPages(t *testing.T) {
	client := new(mockNotesClient)
	client.On("ListNotes", mock.Anything, 1, "").Return(page("a"), nil).Once()

	svc := services.NewNotesService(client, noRetry(), services.WithSharedCache(newRedis(t), time.Minute))
	ctx := context.Background()

	first, err := svc.ListNotes(ctx, 1, "")
	require.NoError(t, err)
	second, err := svc.ListNotes(ctx, 1, "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	client.AssertNumberOfCalls(t, "ListNotes", 1)
}

func TestMutationsInvalidateSharedCache(t *testing.T) {
	draft := entities.FormValues{Title: "New", Content: "body", Tag: entities.TagWork}

	client := new(mockNotesClient)
	client.On("ListNotes", mock.Anything, 1, "").Return(page("a"), nil).Once()
	client.On("CreateNote", mock.Anything, draft).Return(&entities.Note{ID: "b", Title: "New"}, nil).Once()
	client.On("ListNotes", mock.Anything, 1, "").Return(page("a", "b"), nil).Once()
	client.On("DeleteNote", mock.Anything, "a").Return(&entities.Note{ID: "a"}, nil).Once()
	client.On("ListNotes", mock.Anything, 1, "").Return(page("b"), nil).Once()

	svc := services.NewNotesService(client, noRetry(), services.WithSharedCache(newRedis(t), time.Minute))
	ctx := context.Background()

	_, err := svc.ListNotes(ctx, 1, "")
	require.NoError(t, err)

	_, err = svc.CreateNote(ctx, draft)
	require.NoError(t, err)
	afterCreate, err := svc.ListNotes(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, afterCreate.Notes, 2)

	_, err = svc.DeleteNote(ctx, "a")
	require.NoError(t, err)
	afterDelete, err := svc.ListNotes(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, afterDelete.Notes, 1)

	client.AssertExpectations(t)
}

func TestCreateAndDeleteErrors(t *testing.T) {
	draft := entities.FormValues{Title: "New", Tag: entities.TagTodo}
	serverErr := &api.ServerError{Op: "POST /notes", StatusCode: 400, Message: "bad"}

	client := new(mockNotesClient)
	client.On("CreateNote", mock.Anything, draft).Return(nil, serverErr).Once()
	client.On("DeleteNote", mock.Anything, "x").Return(nil, serverErr).Once()
	client.On("GetNote", mock.Anything, "x").Return(nil, serverErr).Once()

	svc := services.NewNotesService(client, noRetry())
	ctx := context.Background()

	_, err := svc.CreateNote(ctx, draft)
	assert.ErrorIs(t, err, api.ErrServer)
	_, err = svc.DeleteNote(ctx, "x")
	assert.ErrorIs(t, err, api.ErrServer)
	_, err = svc.GetNote(ctx, "x")
	assert.ErrorIs(t, err, api.ErrServer)
}

func TestListNotesCallerCancellation(t *testing.T) {
	release := make(chan time.Time)
	defer close(release)

	client := new(mockNotesClient)
	client.On("ListNotes", mock.Anything, 1, "").WaitUntil(release).Return(page("a"), nil).Maybe()

	svc := services.NewNotesService(client, noRetry())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.ListNotes(ctx, 1, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMutationSeparatesInFlightList(t *testing.T) {
	release := make(chan time.Time)
	draft := entities.FormValues{Title: "New", Tag: entities.TagTodo}

	client := new(mockNotesClient)
	client.On("ListNotes", mock.Anything, 1, "").WaitUntil(release).Return(page("old"), nil).Once()
	client.On("ListNotes", mock.Anything, 1, "").Return(page("old", "new"), nil).Once()
	client.On("CreateNote", mock.Anything, draft).Return(&entities.Note{ID: "new"}, nil).Once()

	svc := services.NewNotesService(client, noRetry())
	ctx := context.Background()

	stale := make(chan *entities.FetchNotesResult, 1)
	go func() {
		r, err := svc.ListNotes(ctx, 1, "")
		assert.NoError(t, err)
		stale <- r
	}()
	time.Sleep(30 * time.Millisecond)

	_, err := svc.CreateNote(ctx, draft)
	require.NoError(t, err)

	fresh, err := svc.ListNotes(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, fresh.Notes, 2)

	close(release)
	assert.Len(t, (<-stale).Notes, 1)
	client.AssertExpectations(t)
}

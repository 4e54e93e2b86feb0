package mockapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"notehub/internal/notehub/config"
	"notehub/internal/notehub/domain/entities"
	"notehub/internal/notehub/mockapi"
	"notehub/pkg/logger"
)

const testToken = "secret"

func newServer(t *testing.T, seed int) *mockapi.Server {
	t.Helper()
	store := mockapi.NewStore()
	store.Seed(seed)
	return mockapi.New(config.MockConfig{Token: testToken}, store, nil)
}

func do(t *testing.T, s *mockapi.Server, method, target, body string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func TestListNotes(t *testing.T) {
	s := newServer(t, 25)

	t.Run("first page", func(t *testing.T) {
		resp, data := do(t, s, http.MethodGet, "/notes?page=1&perPage=12", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		list := decode[mockapi.ListResponse](t, data)
		assert.Len(t, list.Notes, 12)
		assert.Equal(t, 3, list.TotalPages)
		assert.Equal(t, "Sample note 25", list.Notes[0].Title)
	})

	t.Run("last page", func(t *testing.T) {
		_, data := do(t, s, http.MethodGet, "/notes?page=3&perPage=12", "")
		list := decode[mockapi.ListResponse](t, data)
		assert.Len(t, list.Notes, 1)
	})

	t.Run("beyond last page", func(t *testing.T) {
		resp, data := do(t, s, http.MethodGet, "/notes?page=4&perPage=12", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		list := decode[mockapi.ListResponse](t, data)
		assert.NotNil(t, list.Notes)
		assert.Empty(t, list.Notes)
		assert.Equal(t, 3, list.TotalPages)
		assert.Contains(t, string(data), `"notes":[]`)
	})

	t.Run("search", func(t *testing.T) {
		_, data := do(t, s, http.MethodGet, "/notes?page=1&search=note+2", "")
		list := decode[mockapi.ListResponse](t, data)
		// 2, 20..25
		assert.Len(t, list.Notes, 7)
		assert.Equal(t, 1, list.TotalPages)
	})

	t.Run("tag", func(t *testing.T) {
		_, data := do(t, s, http.MethodGet, "/notes?tag=todo&perPage=50", "")
		list := decode[mockapi.ListResponse](t, data)
		assert.Len(t, list.Notes, 5)
		for _, n := range list.Notes {
			assert.Equal(t, entities.TagTodo, n.Tag)
		}
	})

	t.Run("invalid params", func(t *testing.T) {
		for _, target := range []string{"/notes?page=0", "/notes?page=x", "/notes?perPage=500", "/notes?tag=Nope"} {
			resp, data := do(t, s, http.MethodGet, target, "")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
			assert.NotEmpty(t, decode[map[string]string](t, data)["message"], target)
		}
	})
}

func TestCreateGetDelete(t *testing.T) {
	s := newServer(t, 0)

	resp, data := do(t, s, http.MethodPost, "/notes", `{"title":"Plan","content":"Q3","tag":"Work"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[entities.Note](t, data)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Plan", created.Title)
	assert.Equal(t, entities.TagWork, created.Tag)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, 1, s.Store().Len())

	resp, data = do(t, s, http.MethodGet, "/notes/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decode[entities.Note](t, data).ID)

	resp, data = do(t, s, http.MethodDelete, "/notes/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Plan", decode[entities.Note](t, data).Title)
	assert.Equal(t, 0, s.Store().Len())

	resp, data = do(t, s, http.MethodDelete, "/notes/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, mockapi.MsgNoteNotFound, decode[map[string]string](t, data)["message"])

	resp, _ = do(t, s, http.MethodGet, "/notes/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateValidation(t *testing.T) {
	s := newServer(t, 0)

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "short title", body: `{"title":"ab","tag":"Todo"}`, want: "title must be at least 3 characters"},
		{name: "missing tag", body: `{"title":"abc"}`, want: "tag is required"},
		{name: "unknown tag", body: `{"title":"abc","tag":"Urgent"}`, want: "tag must be one of"},
		{name: "malformed", body: `{"title":`, want: mockapi.MsgInvalidRequestBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, s, http.MethodPost, "/notes", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, decode[map[string]string](t, data)["message"], tt.want)
		})
	}
	assert.Equal(t, 0, s.Store().Len())
}

func TestCreateNormalizesTag(t *testing.T) {
	s := newServer(t, 0)

	resp, data := do(t, s, http.MethodPost, "/notes", `{"title":"Milk","tag":"shopping"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, entities.TagShopping, decode[entities.Note](t, data).Tag)
}

func TestAuth(t *testing.T) {
	s := newServer(t, 1)

	for _, header := range []string{"", "Bearer wrong", "secret", "Basic secret"} {
		req := httptest.NewRequest(http.MethodGet, "/notes", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := s.App().Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, header)
	}

	open := mockapi.New(config.MockConfig{}, nil, nil)
	resp, err := open.App().Test(httptest.NewRequest(http.MethodGet, "/notes", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	s := newServer(t, 0)
	resp, data := do(t, s, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, mockapi.MsgRouteNotFound, decode[map[string]string](t, data)["message"])
}

func TestListNotesPageFarBeyondEnd(t *testing.T) {
	s := newServer(t, 3)

	for _, target := range []string{
		"/notes?page=9223372036854775807&perPage=12",
		"/notes?page=768614336404564651&perPage=12",
		"/notes?page=2&perPage=100",
	} {
		resp, data := do(t, s, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, target)
		list := decode[mockapi.ListResponse](t, data)
		assert.Empty(t, list.Notes, target)
		assert.Equal(t, 1, list.TotalPages, target)
	}
}

func TestStoreListBounds(t *testing.T) {
	store := mockapi.NewStore()
	store.Seed(5)

	for _, f := range []mockapi.ListFilter{
		{Page: 1<<62 + 1, PerPage: 4},
		{Page: 0, PerPage: 4},
		{Page: 1, PerPage: 0},
		{Page: 3, PerPage: 4},
	} {
		notes, total := store.List(f)
		assert.NotNil(t, notes)
		assert.Empty(t, notes, f)
		assert.Equal(t, 5, total)
	}

	notes, _ := store.List(mockapi.ListFilter{Page: 2, PerPage: 4})
	assert.Len(t, notes, 1)
}

func TestHandlerLogsCarryRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := mockapi.New(config.MockConfig{}, mockapi.NewStore(), logger.FromZap(zap.New(core)))

	req := httptest.NewRequest(http.MethodGet, "/notes/missing", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	entries := logs.FilterMessage(mockapi.LogHandlerGetNote).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()[logger.RequestID])
}

package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notehub/internal/notehub/adapters/rest"
	"notehub/internal/notehub/config"
	"notehub/internal/notehub/domain/entities"
	"notehub/internal/notehub/ports/api"
)

const testToken = "test-token"

type capturedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   []byte
}

func newTestServer(t *testing.T, status int, response any) (*httptest.Server, <-chan capturedRequest) {
	t.Helper()

	requests := make(chan capturedRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests <- capturedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if s, ok := response.(string); ok {
			_, _ = io.WriteString(w, s)
			return
		}
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(srv.Close)
	return srv, requests
}

func newClient(t *testing.T, baseURL string) *rest.Client {
	t.Helper()

	client, err := rest.New(config.APIConfig{BaseURL: baseURL + "/api", Token: testToken, PerPage: 12})
	require.NoError(t, err)
	return client
}

func TestListNotes(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, map[string]any{
		"notes": []map[string]any{
			{"id": "n1", "title": "First", "content": "a", "tag": "Todo"},
			{"id": "n2", "title": "Second", "content": "b", "tag": "Work"},
		},
		"totalPages": 3,
	})
	client := newClient(t, srv.URL)

	result, err := client.ListNotes(context.Background(), 2, "cat")
	require.NoError(t, err)

	req := <-requests
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/notes", req.Path)
	assert.Equal(t, []string{"2"}, req.Query["page"])
	assert.Equal(t, []string{"12"}, req.Query["perPage"])
	assert.Equal(t, []string{"cat"}, req.Query["search"])
	assert.Equal(t, "Bearer "+testToken, req.Header.Get("Authorization"))

	require.Len(t, result.Notes, 2)
	assert.Equal(t, "n1", result.Notes[0].ID)
	assert.Equal(t, entities.TagWork, result.Notes[1].Tag)
	assert.Equal(t, 3, result.PageCount(12))
	assert.Equal(t, 12, result.PerPage)
}

func TestListNotesOmitsEmptySearch(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, map[string]any{"notes": []any{}, "totalPages": 1})
	client := newClient(t, srv.URL)

	_, err := client.ListNotes(context.Background(), 1, "")
	require.NoError(t, err)

	req := <-requests
	assert.NotContains(t, req.Query, "search")
}

func TestListNotesRejectsInvalidPage(t *testing.T) {
	client, err := rest.New(config.APIConfig{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = client.ListNotes(context.Background(), 0, "")
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestCreateNoteSendsDraftWithoutID(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusCreated, map[string]any{
		"id": "new-id", "title": "A", "content": "B", "tag": "Todo",
	})
	client := newClient(t, srv.URL)

	note, err := client.CreateNote(context.Background(), entities.FormValues{Title: "A", Content: "B", Tag: entities.TagTodo})
	require.NoError(t, err)
	assert.Equal(t, "new-id", note.ID)

	req := <-requests
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/notes", req.Path)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "Bearer "+testToken, req.Header.Get("Authorization"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &payload))
	assert.Equal(t, map[string]any{"title": "A", "content": "B", "tag": "Todo"}, payload)
}

func TestDeleteNote(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, map[string]any{
		"id": "a/b", "title": "Gone", "content": "", "tag": "Personal",
	})
	client := newClient(t, srv.URL)

	note, err := client.DeleteNote(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "Gone", note.Title)

	req := <-requests
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/api/notes/a%2Fb", req.Path)
	assert.Equal(t, "Bearer "+testToken, req.Header.Get("Authorization"))
}

func TestGetNote(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, map[string]any{
		"id": "n1", "title": "One", "content": "c", "tag": "Meeting",
	})
	client := newClient(t, srv.URL)

	note, err := client.GetNote(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, entities.TagMeeting, note.Tag)
	assert.Equal(t, "/api/notes/n1", (<-requests).Path)
}

func TestServerError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusUnauthorized, map[string]any{"message": "Invalid or missing token"})
	client := newClient(t, srv.URL)

	_, err := client.ListNotes(context.Background(), 1, "")
	require.ErrorIs(t, err, api.ErrServer)
	assert.NotErrorIs(t, err, api.ErrNetwork)

	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusUnauthorized, serverErr.StatusCode)
	assert.Equal(t, "Invalid or missing token", serverErr.Message)
}

func TestServerErrorPlainBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadGateway, "upstream down")
	client := newClient(t, srv.URL)

	_, err := client.DeleteNote(context.Background(), "n1")

	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "upstream down", serverErr.Message)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client := newClient(t, baseURL)

	_, err := client.ListNotes(context.Background(), 1, "")
	require.ErrorIs(t, err, api.ErrNetwork)
	assert.NotErrorIs(t, err, api.ErrServer)
}

func TestInvalidResponseBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, "{not json")
	client := newClient(t, srv.URL)

	_, err := client.ListNotes(context.Background(), 1, "")
	assert.ErrorIs(t, err, api.ErrInvalidResponse)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	client, err := rest.New(config.APIConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.ListNotes(context.Background(), 1, "")
	assert.ErrorIs(t, err, api.ErrNetwork)
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	_, err := rest.New(config.APIConfig{BaseURL: "notes.local/api"})
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

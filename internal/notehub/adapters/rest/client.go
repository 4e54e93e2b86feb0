// Package rest реализует api.NotesClient поверх HTTP REST API NoteHub.
package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/go-querystring/query"
	"go.uber.org/zap"

	"notehub/internal/notehub/config"
	"notehub/internal/notehub/domain/entities"
	"notehub/internal/notehub/ports/api"
	"notehub/pkg/logger"
)

// Константы для логирования.
const (
	LogRequestDone   = "notehub request completed"
	LogRequestFailed = "notehub request failed"

	notesPath       = "notes"
	headerRequestID = "X-Request-ID"
	maxErrorBodyLen = 64 << 10
)

// Client HTTP-клиент NoteHub API. Токен читается один раз при создании и не проверяется.
type Client struct {
	baseURL    *url.URL
	token      string
	perPage    int
	httpClient *http.Client
}

var _ api.NotesClient = (*Client)(nil)

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient задает http.Client, например с собственным транспортом.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New создает клиент по конфигурации API.
func New(cfg config.APIConfig, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q: %w", cfg.BaseURL, api.ErrInvalidArgument)
	}

	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = entities.DefaultPerPage
	}

	c := &Client{
		baseURL:    base,
		token:      cfg.Token,
		perPage:    perPage,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PerPage возвращает размер страницы, который клиент запрашивает у сервера.
func (c *Client) PerPage() int {
	return c.perPage
}

type listParams struct {
	Page    int    `url:"page"`
	PerPage int    `url:"perPage"`
	Search  string `url:"search,omitempty"`
}

// ListNotes выполняет GET /notes?page=&perPage=&search=.
func (c *Client) ListNotes(ctx context.Context, page int, search string) (*entities.FetchNotesResult, error) {
	if page < 1 {
		return nil, fmt.Errorf("page %d: %w", page, api.ErrInvalidArgument)
	}

	values, err := query.Values(listParams{Page: page, PerPage: c.perPage, Search: search})
	if err != nil {
		return nil, fmt.Errorf("encode list query: %w", err)
	}

	var result entities.FetchNotesResult
	if err := c.do(ctx, http.MethodGet, notesPath, values, nil, &result); err != nil {
		return nil, err
	}
	if result.PerPage == 0 {
		result.PerPage = c.perPage
	}
	return &result, nil
}

// GetNote выполняет GET /notes/{id}.
func (c *Client) GetNote(ctx context.Context, id string) (*entities.Note, error) {
	if id == "" {
		return nil, fmt.Errorf("note id: %w", api.ErrInvalidArgument)
	}
	var note entities.Note
	if err := c.do(ctx, http.MethodGet, notePath(id), nil, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// CreateNote выполняет POST /notes с телом {title, content, tag}.
func (c *Client) CreateNote(ctx context.Context, draft entities.FormValues) (*entities.Note, error) {
	var note entities.Note
	if err := c.do(ctx, http.MethodPost, notesPath, nil, draft, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote выполняет DELETE /notes/{id}.
func (c *Client) DeleteNote(ctx context.Context, id string) (*entities.Note, error) {
	if id == "" {
		return nil, fmt.Errorf("note id: %w", api.ErrInvalidArgument)
	}
	var note entities.Note
	if err := c.do(ctx, http.MethodDelete, notePath(id), nil, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func notePath(id string) string {
	return notesPath + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	op := method + " /" + path
	log := logger.Log(ctx).With(zap.String("op", op))

	target, err := c.baseURL.Parse(path)
	if err != nil {
		return fmt.Errorf("%s: resolve url: %w", op, err)
	}
	if len(params) > 0 {
		target.RawQuery = params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := logger.GetRequestID(ctx); ok {
		req.Header.Set(headerRequestID, id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug(ctx, LogRequestFailed, zap.Error(err))
		return &api.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	log.Debug(ctx, LogRequestDone,
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &api.ServerError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &api.NetworkError{Op: op, Err: err}
	}
	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w: %w", op, api.ErrInvalidResponse, err)
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// errorMessage извлекает сообщение сервера; нераспознанное тело возвращается как есть.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodyLen))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body errorBody
	if err := sonic.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}

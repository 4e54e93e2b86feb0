package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"notehub/internal/notehub/ports/api"
)

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("list notes: %w", &api.NetworkError{Op: "GET /notes", Err: cause})

	assert.ErrorIs(t, err, api.ErrNetwork)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, api.ErrServer)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestServerError(t *testing.T) {
	err := &api.ServerError{Op: "DELETE /notes/1", StatusCode: http.StatusNotFound}

	assert.ErrorIs(t, err, api.ErrServer)
	assert.NotErrorIs(t, err, api.ErrNetwork)
	assert.Contains(t, err.Error(), "Not Found")

	withMessage := &api.ServerError{Op: "POST /notes", StatusCode: http.StatusBadRequest, Message: "title is required"}
	assert.Contains(t, withMessage.Error(), "title is required")
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", &api.NetworkError{Op: "GET", Err: errors.New("reset")}, true},
		{"bad gateway", &api.ServerError{StatusCode: http.StatusBadGateway}, true},
		{"too many requests", &api.ServerError{StatusCode: http.StatusTooManyRequests}, false},
		{"unauthorized", &api.ServerError{StatusCode: http.StatusUnauthorized}, false},
		{"invalid body", api.ErrInvalidResponse, false},
		{"canceled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, api.IsRetryable(tt.err))
		})
	}
}

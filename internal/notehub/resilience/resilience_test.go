package resilience_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notehub/internal/notehub/config"
	"notehub/internal/notehub/ports/api"
	"notehub/internal/notehub/resilience"
)

var errTransport = &api.NetworkError{Op: "GET /notes", Err: errors.New("connection reset")}

func TestRetryDefaultIsSingleAttempt(t *testing.T) {
	r := resilience.NewRetry("test", resilience.DefaultRetryConfig())

	calls := 0
	err := r.Execute(context.Background(), func() error {
		calls++
		return errTransport
	})

	require.ErrorIs(t, err, api.ErrNetwork)
	assert.Equal(t, 1, calls)
}

func TestRetryRetriesTransientErrors(t *testing.T) {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = 3
	cfg.InitialBackoff = time.Millisecond
	r := resilience.NewRetry("test", cfg)

	calls := 0
	err := r.Execute(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &api.ServerError{StatusCode: http.StatusServiceUnavailable}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = 5
	cfg.InitialBackoff = time.Millisecond
	r := resilience.NewRetry("test", cfg)

	calls := 0
	err := r.Execute(context.Background(), func() error {
		calls++
		return &api.ServerError{StatusCode: http.StatusUnauthorized}
	})

	require.ErrorIs(t, err, api.ErrServer)
	assert.Equal(t, 1, calls)
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = 5
	cfg.InitialBackoff = time.Second
	r := resilience.NewRetry("test", cfg)

	ctx, cancel := context.WithCancel(context.Background())
	err := r.Execute(ctx, func() error {
		cancel()
		return errTransport
	})

	require.ErrorIs(t, err, resilience.ErrContextCanceled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test", resilience.CircuitBreakerConfig{
		ErrorThreshold:   2,
		Timeout:          50 * time.Millisecond,
		SuccessThreshold: 1,
	})
	ctx := context.Background()
	fail := func() error { return errTransport }
	ok := func() error { return nil }

	require.Error(t, cb.Execute(ctx, fail))
	assert.Equal(t, resilience.StateClosed, cb.State())
	require.Error(t, cb.Execute(ctx, fail))
	assert.Equal(t, resilience.StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func() error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.False(t, called)

	time.Sleep(60 * time.Millisecond)

	require.NoError(t, cb.Execute(ctx, ok))
	assert.Equal(t, resilience.StateClosed, cb.State())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test", resilience.CircuitBreakerConfig{
		ErrorThreshold:   1,
		Timeout:          20 * time.Millisecond,
		SuccessThreshold: 2,
	})
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, func() error { return errTransport }))
	time.Sleep(30 * time.Millisecond)

	require.Error(t, cb.Execute(ctx, func() error { return errTransport }))
	assert.Equal(t, resilience.StateOpen, cb.State())
}

func TestServiceResilienceIgnoresClientErrors(t *testing.T) {
	r := resilience.FromConfig("notes", config.ResilienceConfig{
		RetryMaxAttempts:        1,
		BreakerErrorThreshold:   1,
		BreakerTimeout:          time.Minute,
		BreakerSuccessThreshold: 1,
	})
	ctx := context.Background()

	for range 3 {
		err := r.Execute(ctx, "DeleteNote", func() error {
			return &api.ServerError{StatusCode: http.StatusNotFound}
		})
		require.ErrorIs(t, err, api.ErrServer)
	}
	assert.Equal(t, resilience.StateClosed, r.State())

	_ = r.Execute(ctx, "ListNotes", func() error { return errTransport })
	assert.Equal(t, resilience.StateOpen, r.State())
}

func TestDo(t *testing.T) {
	r := resilience.NewServiceResilience("notes", resilience.DefaultCircuitBreakerConfig(), resilience.DefaultRetryConfig())

	got, err := resilience.Do(context.Background(), r, "GetNote", func() (string, error) {
		return "note-1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "note-1", got)

	got, err = resilience.Do(context.Background(), r, "GetNote", func() (string, error) {
		return "partial", errTransport
	})
	require.Error(t, err)
	assert.Empty(t, got)
}

package httpclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := DefaultCircuitBreakerConfig("test-breaker-opens")
	cfg.MinRequests = 3
	cb := NewCircuitBreakerClient(New(DefaultConfig()), cfg, testLogger())

	for i := 0; i < 5; i++ {
		_, _ = cb.Post(context.Background(), srv.URL, "application/json", strings.NewReader("{}"))
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Post(context.Background(), srv.URL, "application/json", strings.NewReader("{}"))
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_FallbackInvokedWhenOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := DefaultCircuitBreakerConfig("test-breaker-fallback")
	cfg.MinRequests = 3
	cb := NewCircuitBreakerClient(New(DefaultConfig()), cfg, testLogger()).
		WithFallback(func(ctx context.Context, err error) (*http.Response, error) {
			rec := httptest.NewRecorder()
			rec.WriteHeader(http.StatusOK)
			_, _ = rec.WriteString(`{"data":{"nodes":[]}}`)
			return rec.Result(), nil
		})

	for i := 0; i < 5; i++ {
		_, _ = cb.Post(context.Background(), srv.URL, "application/json", strings.NewReader("{}"))
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	resp, err := cb.Post(context.Background(), srv.URL, "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "nodes")
}

func TestCircuitBreaker_SuccessPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	cfg := DefaultCircuitBreakerConfig("test-breaker-success")
	cb := NewCircuitBreakerClient(New(DefaultConfig()), cfg, testLogger())

	resp, err := cb.Post(context.Background(), srv.URL, "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

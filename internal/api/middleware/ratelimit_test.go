package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudlens/internal/config"
	"fraudlens/pkg/logger"
)

// memoryStore is an in-process RateLimitStore for tests
type memoryStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{counts: make(map[string]int64)}
}

func (s *memoryStore) CheckRateLimit(_ context.Context, clientID string, limit int64, window time.Duration) (bool, int64, time.Time, error) {
	if s.err != nil {
		return false, 0, time.Time{}, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[clientID]++
	count := s.counts[clientID]
	return count <= limit, max(limit-count, 0), time.Now().Add(window), nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func request(method, remote string) *http.Request {
	req := httptest.NewRequest(method, "/api/analyze-text", nil)
	req.RemoteAddr = remote
	return req
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	store := newMemoryStore()
	h := RateLimiter(store, config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}, logger.Nop())(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, request(http.MethodPost, "10.0.0.1:5555"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request(http.MethodPost, "10.0.0.1:6666"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())

	// another client has its own budget
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, request(http.MethodPost, "10.0.0.2:5555"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_SkipsOptions(t *testing.T) {
	store := newMemoryStore()
	h := RateLimiter(store, config.RateLimitConfig{RequestsPerMinute: 0}, logger.Nop())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request(http.MethodOptions, "10.0.0.1:1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.counts)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("redis down")
	h := RateLimiter(store, config.RateLimitConfig{RequestsPerMinute: 1}, logger.Nop())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request(http.MethodPost, "10.0.0.1:1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestClientID(t *testing.T) {
	assert.Equal(t, "ip:10.1.2.3", clientID(request(http.MethodGet, "10.1.2.3:4000")))
	assert.Equal(t, "ip:10.1.2.3", clientID(request(http.MethodGet, "10.1.2.3")))
}

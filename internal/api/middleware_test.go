package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestTimingMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	TimingMiddleware(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("X-Process-Time"), "ms")
}

func TestRateLimitMiddlewareThrottlesPerIP(t *testing.T) {
	// 2 requests per minute gives a burst of 1: first request passes, the
	// immediate second one is rejected.
	handler := RateLimitMiddleware(2, time.Minute)(okHandler())

	request := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/players", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := request("10.0.0.1:5000")
	require.Equal(t, http.StatusOK, first.Code)

	second := request("10.0.0.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, second.Code, "same IP shares one bucket")
	assert.Equal(t, "60", second.Header().Get("Retry-After"))

	other := request("10.0.0.2:5000")
	assert.Equal(t, http.StatusOK, other.Code, "distinct IPs get distinct buckets")
}

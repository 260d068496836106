package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedHandler(limit int, window time.Duration) http.Handler {
	rl := NewRateLimiter(limit, window)
	return rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func hit(handler http.Handler, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestLimitRejectsAboveThreshold(t *testing.T) {
	handler := limitedHandler(3, time.Minute)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1234"), "request %d", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "10.0.0.1:1234"))

	// Other clients keep their own budget.
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.2:1234"))
}

func TestLimitResetsAfterWindow(t *testing.T) {
	handler := limitedHandler(1, 30*time.Millisecond)

	require.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1234"))
	require.Equal(t, http.StatusTooManyRequests, hit(handler, "10.0.0.1:1234"))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1234"))
}

func TestClientIPPrefersForwardingHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	assert.Equal(t, "127.0.0.1:9999", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1, 10.0.0.2")
	assert.Equal(t, "203.0.113.7", clientIP(req), "first forwarded entry is the originating client")

	req.Header.Set("X-Real-IP", "198.51.100.4")
	assert.Equal(t, "198.51.100.4", clientIP(req))
}

func TestLimitCountsForwardedClientNotProxy(t *testing.T) {
	handler := limitedHandler(1, time.Minute)

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1111"
	first.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	// Same client via a different proxy hop still counts against the same
	// budget.
	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.2:2222"
	second.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

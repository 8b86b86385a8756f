package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, 2, zap.NewNop())
	defer rl.Shutdown()

	handler := rl.Middleware(okHandler())

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/payments/capture", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000"))
	// Same host, different source port
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1002"))

	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(10, 10, zap.NewNop())
	defer rl.Shutdown()

	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")

	assert.Equal(t, 0, rl.cleanup(time.Now()))
	assert.Equal(t, 2, rl.cleanup(time.Now().Add(10*time.Minute)))
}

func TestRateLimiter_EvictsOldest(t *testing.T) {
	rl := NewRateLimiter(10, 10, zap.NewNop())
	defer rl.Shutdown()
	rl.maxSize = 2

	rl.getLimiter("10.0.0.1")
	time.Sleep(time.Millisecond)
	rl.getLimiter("10.0.0.2")
	rl.getLimiter("10.0.0.3")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.limiters, 2)
	assert.NotContains(t, rl.limiters, "10.0.0.1")
}

func TestRateLimiter_ShutdownTwice(t *testing.T) {
	rl := NewRateLimiter(1, 1, zap.NewNop())
	rl.Shutdown()
	assert.NotPanics(t, rl.Shutdown)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientIP(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientIP(req))
}

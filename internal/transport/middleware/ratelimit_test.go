package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func hit(h http.Handler, addr string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pokemon", nil)
	req.RemoteAddr = addr
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	h := rl.Limit(10)(okHandler())

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "1.2.3.4:1234").Code, "request %d", i)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	h := rl.Limit(5)(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "1.2.3.4:1234").Code)
	}

	rec := hit(h, "1.2.3.4:9999")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "12", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
}

func TestRateLimiter_DifferentIPsIndependent(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	h := rl.Limit(2)(okHandler())

	hit(h, "1.1.1.1:1234")
	hit(h, "1.1.1.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "1.1.1.1:1234").Code)
	assert.Equal(t, http.StatusOK, hit(h, "2.2.2.2:5678").Code)
}

func TestRateLimiter_TokenRefill(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	// one token per second
	h := rl.Limit(60)(okHandler())

	for i := 0; i < 60; i++ {
		hit(h, "3.3.3.3:1234")
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "3.3.3.3:1234").Code)

	time.Sleep(1100 * time.Millisecond)

	assert.Equal(t, http.StatusOK, hit(h, "3.3.3.3:1234").Code)
}

func TestRateLimiter_ZeroDisables(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	h := rl.Limit(0)(okHandler())

	for i := 0; i < 100; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "4.4.4.4:1").Code)
	}
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(time.Millisecond)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

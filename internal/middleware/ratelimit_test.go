package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(limit int) (*WindowLimiter, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := &WindowLimiter{
		limit:   limit,
		window:  Window,
		message: "Too many requests from this IP, please try again later.",
		entries: make(map[string]*windowEntry),
		now:     func() time.Time { return now },
	}
	return l, &now
}

func doRequest(handler http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":54321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestWindowLimiter(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allows up to the limit and then refuses", func(t *testing.T) {
		limiter, _ := newTestLimiter(3)
		handler := limiter.Middleware(okHandler)

		for i := 0; i < 3; i++ {
			rec := doRequest(handler, "10.0.0.1")
			assert.Equal(t, http.StatusOK, rec.Code)
		}

		rec := doRequest(handler, "10.0.0.1")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t,
			`{"success":false,"message":"Too many requests from this IP, please try again later."}`,
			rec.Body.String())
	})

	t.Run("sets the rate limit headers on every response", func(t *testing.T) {
		limiter, _ := newTestLimiter(2)
		handler := limiter.Middleware(okHandler)

		rec := doRequest(handler, "10.0.0.1")
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))

		doRequest(handler, "10.0.0.1")
		rec = doRequest(handler, "10.0.0.1")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("counts each client IP separately", func(t *testing.T) {
		limiter, _ := newTestLimiter(1)
		handler := limiter.Middleware(okHandler)

		require.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.1").Code)
		require.Equal(t, http.StatusTooManyRequests, doRequest(handler, "10.0.0.1").Code)
		assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.2").Code)
	})

	t.Run("window rollover resets the counter", func(t *testing.T) {
		limiter, now := newTestLimiter(1)
		handler := limiter.Middleware(okHandler)

		require.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.1").Code)
		require.Equal(t, http.StatusTooManyRequests, doRequest(handler, "10.0.0.1").Code)

		*now = now.Add(Window + time.Second)
		assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.1").Code)
	})

	t.Run("prefers the forwarded address over the socket address", func(t *testing.T) {
		limiter, _ := newTestLimiter(1)
		handler := limiter.Middleware(okHandler)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1111"
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		// Same forwarded client from a different socket shares the budget.
		req2 := httptest.NewRequest(http.MethodGet, "/", nil)
		req2.RemoteAddr = "10.0.0.2:2222"
		req2.Header.Set("X-Forwarded-For", "203.0.113.7")
		rec2 := httptest.NewRecorder()
		handler.ServeHTTP(rec2, req2)
		assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	})
}

func TestClientIP(t *testing.T) {
	t.Run("falls back to the socket address without a port", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.9:4242"
		assert.Equal(t, "192.0.2.9", ClientIP(req))
	})

	t.Run("uses X-Real-IP when no forwarded header is present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "198.51.100.3")
		assert.Equal(t, "198.51.100.3", ClientIP(req))
	})

	t.Run("takes the first entry of X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
		assert.Equal(t, "203.0.113.7", ClientIP(req))
	})
}

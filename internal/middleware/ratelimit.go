package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Window is the fixed counting window shared by every limiter tier.
const Window = 15 * time.Minute

// Request caps per window and per client IP. The global cap applies to every
// route; signup and refresh share the auth cap, signin has its own tighter
// one on top of the global budget.
const (
	GlobalLimit = 100
	AuthLimit   = 10
	SigninLimit = 5
)

type windowEntry struct {
	count   int
	resetAt time.Time
}

// WindowLimiter counts requests per client IP in fixed windows. The counters
// live in process memory; they reset on restart and are not shared between
// replicas.
type WindowLimiter struct {
	limit   int
	window  time.Duration
	message string

	mu      sync.Mutex
	entries map[string]*windowEntry

	now func() time.Time
}

func NewWindowLimiter(limit int, window time.Duration, message string) *WindowLimiter {
	l := &WindowLimiter{
		limit:   limit,
		window:  window,
		message: message,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}

	go l.cleanupLoop()

	return l
}

// take consumes one slot for the given IP and reports whether the request is
// allowed, along with the remaining budget and the window reset time.
func (l *WindowLimiter) take(ip string) (allowed bool, remaining int, resetAt time.Time) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[ip]
	if !ok || !e.resetAt.After(now) {
		e = &windowEntry{resetAt: now.Add(l.window)}
		l.entries[ip] = e
	}

	if e.count >= l.limit {
		return false, 0, e.resetAt
	}

	e.count++
	return true, l.limit - e.count, e.resetAt
}

// Middleware enforces the limiter on every request passing through it.
// Refusals carry X-RateLimit-* headers and a fixed JSON body.
func (l *WindowLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)

		allowed, remaining, resetAt := l.take(ip)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w, `{"success":false,"message":%q}`, l.message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *WindowLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for range ticker.C {
		now := l.now()
		l.mu.Lock()
		for ip, e := range l.entries {
			if !e.resetAt.After(now) {
				delete(l.entries, ip)
			}
		}
		l.mu.Unlock()
	}
}

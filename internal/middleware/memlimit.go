package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/surjeetsr38/gyansathi-backend/internal/api/apperr"
)

// MemoryRateLimiter is the single-process fallback used when Redis is not
// configured: fixed windows per client IP, reset by time comparison rather
// than by a cleanup task.
type MemoryRateLimiter struct {
	maxReqs int
	window  time.Duration

	mu      sync.Mutex
	windows map[string]*ipWindow
}

type ipWindow struct {
	start time.Time
	count int
}

func NewMemoryRateLimiter(maxReqs int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		maxReqs: maxReqs,
		window:  window,
		windows: make(map[string]*ipWindow),
	}
}

func (rl *MemoryRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(ClientIP(r)) {
			apperr.Handle(w, apperr.NewRateLimitError(retryAfterSec(rl.window)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *MemoryRateLimiter) allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	win, ok := rl.windows[ip]
	if !ok || now.Sub(win.start) >= rl.window {
		rl.windows[ip] = &ipWindow{start: now, count: 1}
		return true
	}
	if win.count >= rl.maxReqs {
		return false
	}
	win.count++
	return true
}

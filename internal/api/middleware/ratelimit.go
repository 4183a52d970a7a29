package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/edvin/skinsight/internal/api/response"
)

// maxTrackedClients bounds the limiter's memory. When the table grows past
// this, stale windows are evicted before a new client is admitted.
const maxTrackedClients = 10000

// RateLimiter enforces a sliding-window request limit per authenticated key,
// falling back to the remote address for unauthenticated routes.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	calls   int
	window  time.Duration
	now     func() time.Time
}

func NewRateLimiter(calls int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string][]time.Time),
		calls:   calls,
		window:  window,
		now:     time.Now,
	}
}

// Allow records a hit for the client and reports whether it is within the
// limit. Timestamps older than the window are pruned on every call.
func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	hits := rl.windows[clientID]
	live := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			live = append(live, t)
		}
	}

	if len(live) >= rl.calls {
		rl.windows[clientID] = live
		return false
	}

	if _, tracked := rl.windows[clientID]; !tracked && len(rl.windows) >= maxTrackedClients {
		rl.evictStale(cutoff)
	}

	rl.windows[clientID] = append(live, now)
	return true
}

// evictStale drops clients whose every hit has aged out. Caller holds the lock.
func (rl *RateLimiter) evictStale(cutoff time.Time) {
	for id, hits := range rl.windows {
		expired := true
		for _, t := range hits {
			if t.After(cutoff) {
				expired = false
				break
			}
		}
		if expired {
			delete(rl.windows, id)
		}
	}
}

// Middleware rejects requests over the limit with a 429. The client is keyed
// by API key ID when authenticated, remote address otherwise.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := r.RemoteAddr
		if key := GetIdentity(r.Context()); key != nil {
			clientID = key.ID
		}

		if !rl.Allow(clientID) {
			response.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

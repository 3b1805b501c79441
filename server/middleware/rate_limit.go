package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyFunc extracts the rate-limiting key from a request.
type KeyFunc func(*http.Request) string

// IPAddressKeyFunc keys limits by the client address.
func IPAddressKeyFunc(r *http.Request) string {
	return r.RemoteAddr
}

// RateLimiter applies a per-key token bucket to incoming requests.
type RateLimiter struct {
	extractKey KeyFunc
	rate       rate.Limit
	burst      int
	logger     *slog.Logger
	done       chan struct{}
	closeOnce  sync.Once

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiter builds a RateLimiter. A cleanup goroutine evicts idle
// keys so long-running servers do not accumulate one limiter per
// client forever; Close stops it.
func NewRateLimiter(logger *slog.Logger, keyFunc KeyFunc, limit rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		extractKey: keyFunc,
		rate:       limit,
		burst:      burst,
		logger:     logger,
		done:       make(chan struct{}),
		limiters:   make(map[string]*rate.Limiter),
	}
	go rl.cleanup()
	return rl
}

// Close stops the eviction goroutine. Safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, limiter := range rl.limiters {
		// A full bucket means the key has been idle for a while.
		if limiter.Tokens() >= float64(rl.burst) {
			delete(rl.limiters, key)
		}
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, ok := rl.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Limit is the middleware entry point.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.getLimiter(rl.extractKey(r)).Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			rl.logger.Warn("rate limit exceeded",
				"remote_addr", r.RemoteAddr,
				"method", r.Method,
				"url", r.URL.Path,
			)
			return
		}
		next.ServeHTTP(w, r)
	})
}

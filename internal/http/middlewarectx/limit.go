package middlewarectx

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/overmind-app/overmind/internal/http/response"
)

// RateLimitMiddleware is a coarse process-wide limiter protecting the
// whole server from floods. Fine-grained per-key limiting is done by
// SlidingWindow on the AI routes.
func RateLimitMiddleware(log *slog.Logger, limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Warn("global rate limit exceeded")
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SlidingWindow counts requests per API key within a rolling window.
// Timestamps are pruned on each check, so memory stays bounded by the
// number of active keys times the limit.
type SlidingWindow struct {
	mu     sync.Mutex
	window time.Duration
	limit  int
	hits   map[string][]time.Time
	now    func() time.Time
}

// NewSlidingWindow creates a limiter allowing limit requests per window.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		window: window,
		limit:  limit,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow records a request for key and reports whether it fits the window,
// along with how many requests remain.
func (sw *SlidingWindow) Allow(key string) (remaining int, ok bool) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	cutoff := sw.now().Add(-sw.window)
	recent := sw.hits[key][:0]
	for _, ts := range sw.hits[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= sw.limit {
		sw.hits[key] = recent
		return 0, false
	}

	recent = append(recent, sw.now())
	sw.hits[key] = recent
	return sw.limit - len(recent), true
}

// Limit returns the configured per-window request limit.
func (sw *SlidingWindow) Limit() int {
	return sw.limit
}

// Middleware applies the sliding window keyed by the API key header and
// exposes the limit state via X-RateLimit headers.
func (sw *SlidingWindow) Middleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)

			remaining, ok := sw.Allow(key)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(sw.limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				log.Warn("api key rate limit exceeded")
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("rate limit exceeded, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

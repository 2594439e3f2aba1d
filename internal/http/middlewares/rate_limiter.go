package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

type bucket struct {
	count int
	start time.Time
}

// fixedWindow counts requests per client in windows of equal length.
type fixedWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*bucket
	now     func() time.Time
}

// allow records one request for key and reports whether it fits in the
// current window, plus the requests left and when the window resets.
func (w *fixedWindow) allow(key string) (bool, int, time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	b, ok := w.buckets[key]
	if !ok || now.Sub(b.start) >= w.window {
		if len(w.buckets) > 1024 {
			w.prune(now)
		}
		b = &bucket{start: now}
		w.buckets[key] = b
	}

	reset := b.start.Add(w.window)
	if b.count >= w.limit {
		return false, 0, reset
	}
	b.count++
	return true, w.limit - b.count, reset
}

func (w *fixedWindow) prune(now time.Time) {
	for key, b := range w.buckets {
		if now.Sub(b.start) >= w.window {
			delete(w.buckets, key)
		}
	}
}

func RateLimiter(limit int, window time.Duration) echo.MiddlewareFunc {
	return rateLimiter(&fixedWindow{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	})
}

func rateLimiter(w *fixedWindow) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, remaining, reset := w.allow(c.RealIP())

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(w.limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !ok {
				retry := int(reset.Sub(w.now()).Seconds()) + 1
				h.Set(echo.HeaderRetryAfter, strconv.Itoa(retry))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRateLimiter_WindowResets(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	w := &fixedWindow{
		limit:   2,
		window:  time.Minute,
		buckets: make(map[string]*bucket),
		now:     func() time.Time { return now },
	}

	e := echo.New()
	e.Use(rateLimiter(w))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	hit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := hit(); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := hit()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderRetryAfter) == "" {
		t.Error("expected Retry-After header")
	}

	now = now.Add(time.Minute)
	if rec := hit(); rec.Code != http.StatusOK {
		t.Errorf("expected new window to admit request, got %d", rec.Code)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(0.5, 2, time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	e := echo.New()
	handler := limiter.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	call := func(ip string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		return rec, handler(e.NewContext(req, rec))
	}

	for i := 0; i < 2; i++ {
		_, err := call("10.0.0.1")
		require.NoError(t, err)
	}

	rec, err := call("10.0.0.1")
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))

	_, err = call("10.0.0.2")
	require.NoError(t, err, "limits are tracked per client")

	now = now.Add(2 * time.Second)
	_, err = call("10.0.0.1")
	require.NoError(t, err)
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter(1, 1, time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.limiterFor("10.0.0.1")
	now = now.Add(2 * time.Minute)
	limiter.limiterFor("10.0.0.2")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.visitors, 1)
	assert.Contains(t, limiter.visitors, "10.0.0.2")
}

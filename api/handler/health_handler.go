package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type HealthHandler struct {
	Store   Pinger
	Timeout time.Duration
}

func (h HealthHandler) Check(c echo.Context) error {
	if h.Store == nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		c.Set(contextCauseKey, err)
		return writeError(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "store unavailable")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "net/http" // net/http provides status codes and response helpers
    "time"

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness endpoint.  It returns a plain text "ok" with a
// 200 status as long as the process serves HTTP.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Pinger is implemented by the optional backends (*sql.DB through
// PingContext, Redis through a small adapter).
type Pinger interface {
    PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Ready returns the readiness endpoint.  Each named backend is pinged with
// a short timeout; any failure yields 503 with the failing names.
func Ready(backends map[string]Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        failed := map[string]string{}
        for name, p := range backends {
            if err := p.PingContext(ctx); err != nil {
                failed[name] = err.Error()
            }
        }
        if len(failed) > 0 {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "failed": failed})
        }
        return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
    }
}

package middleware

import (
    "log/slog"
    "time"

    "github.com/labstack/echo/v4"
)

// RequestLogger writes one structured line per request.  Server errors are
// logged at error level, client errors at warn.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            status := c.Response().Status
            attrs := []any{
                "method", c.Request().Method,
                "route", c.Path(),
                "uri", c.Request().RequestURI,
                "status", status,
                "latency", time.Since(start),
                "ip", c.RealIP(),
            }
            if err != nil {
                attrs = append(attrs, "err", err)
            }
            switch {
            case status >= 500:
                log.Error("http request", attrs...)
            case status >= 400:
                log.Warn("http request", attrs...)
            default:
                log.Info("http request", attrs...)
            }
            return nil
        }
    }
}

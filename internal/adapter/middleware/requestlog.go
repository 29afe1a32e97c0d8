package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger writes one structured line per request.
func RequestLogger(l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}
			if id := req.Header.Get(HeaderRequestID); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if actor := req.Header.Get(HeaderActorID); actor != "" {
				fields = append(fields, zap.String("actor_id", actor))
			}
			l.Info("http_request", fields...)
			return nil
		}
	}
}

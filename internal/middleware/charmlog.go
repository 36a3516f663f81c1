package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// CharmLog logs every request at debug level, and at warn level when the
// handler answered with an error status.
func CharmLog(logger *log.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = log.Default()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			fields := []any{
				"method", req.Method,
				"uri", req.RequestURI,
				"status", res.Status,
				"latency", time.Since(start),
			}

			if res.Status >= 400 {
				logger.Warn("Control request failed", append(fields, "err", err)...)
			} else {
				logger.Debug("Control request", fields...)
			}
			return nil
		}
	}
}

package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pgcledger/pkg/logger"
)

// Logger puts log in the request context and writes one line per request.
// Health probes log at debug; client errors at warn; server errors at error.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))
		c.Next()

		status := c.Writer.Status()
		l := log.WithContext(c.Request.Context())
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"query", c.Request.URL.RawQuery,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		switch {
		case strings.HasPrefix(path, "/health"):
			l.Debugw("http request", fields...)
		case status >= http.StatusInternalServerError:
			l.Errorw("http request", append(fields, "error", c.Errors.String())...)
		case status >= http.StatusBadRequest:
			l.Warnw("http request", append(fields, "error", c.Errors.String())...)
		default:
			l.Infow("http request", fields...)
		}
	}
}

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"procura/internal/core/apperror"
	"procura/pkg/logger"
)

// Logger makes log the request-scoped logger and writes one access line per
// request. 5xx responses log at error level and 4xx at warn.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if resourceID := c.Param("id"); resourceID != "" {
			fields = append(fields, "resource_id", resourceID)
		}
		if key := c.GetString(ctxIdempotencyKey); key != "" {
			fields = append(fields, "idempotency_key", key)
		}
		if last := c.Errors.Last(); last != nil {
			if appErr, ok := apperror.AsAppError(last.Err); ok {
				fields = append(fields, "error_code", appErr.Code)
			} else {
				fields = append(fields, "error", last.Err.Error())
			}
		}

		reqLog := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			reqLog.Errorw("http request", fields...)
		case status >= 400:
			reqLog.Warnw("http request", fields...)
		default:
			reqLog.Infow("http request", fields...)
		}
	}
}

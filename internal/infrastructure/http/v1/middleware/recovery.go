// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"procura/internal/core/apperror"
	"procura/pkg/logger"
)

// Recovery turns a panic into INTERNAL_ERROR for ErrorHandler to render.
// The stack goes to the log only.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error(c.Request.Context(), "panic recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"route", c.FullPath(),
			"stack", string(debug.Stack()),
		)

		_ = c.Error(
			apperror.NewInternal(fmt.Errorf("panic: %v", recovered)).
				WithDetail("request_id", c.GetString(ctxRequestID)),
		)
		c.Abort()
	})
}

package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"procura/internal/core/apperror"
	"procura/pkg/logger"
)

// KeyFailer records the error response of an idempotent request so retries replay it.
type KeyFailer interface {
	FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
}

// KeyReleaser forgets a key so the same request can run again.
type KeyReleaser interface {
	ReleaseKey(ctx context.Context, key string) error
}

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Internal errors are hidden from clients and logged in full.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		// Handler already responded.
		if c.Writer.Written() {
			return
		}

		status := http.StatusInternalServerError
		retryable := true
		var body gin.H

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}
			status = appErr.HTTPStatus
			retryable = appErr.Retryable()
			body = gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			}
		} else {
			logger.Error(c.Request.Context(), "unhandled error", "error", err)
			body = gin.H{
				"code":    apperror.CodeInternal,
				"message": "Internal server error",
				"details": map[string]any{
					"request_id": c.GetString(ctxRequestID),
				},
			}
		}

		finishIdempotencyKey(c, status, body, retryable)
		c.JSON(status, body)
	}
}

// finishIdempotencyKey stores a final error for replay. Errors a resend may
// clear, such as lock timeouts and 5xx, release the key instead.
func finishIdempotencyKey(c *gin.Context, status int, body gin.H, retryable bool) {
	key := c.GetString(ctxIdempotencyKey)
	if key == "" {
		return
	}
	store, ok := c.Get(ctxIdempotencyStore)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if retryable {
		if r, ok := store.(KeyReleaser); ok && r != nil {
			if err := r.ReleaseKey(ctx, key); err != nil {
				logger.Warn(ctx, "release idempotency key", "key", key, "error", err)
			}
		}
		return
	}
	if f, ok := store.(KeyFailer); ok && f != nil {
		if err := f.FailKey(ctx, key, status, "application/json", body); err != nil {
			logger.Warn(ctx, "fail idempotency key", "key", key, "error", err)
		}
	}
}

// Package apperror defines the error type returned by services and rendered
// by the HTTP error middleware.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeInternal   = "INTERNAL_ERROR"
	CodeValidation = "VALIDATION_ERROR"

	// Stock reconciliation failures (422)
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeItemNotFound      = "ITEM_NOT_FOUND"

	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	CodeNotFound = "NOT_FOUND"

	// 409
	CodeConflict         = "CONFLICT"
	CodeConcurrentUpdate = "CONCURRENT_UPDATE"
	CodeDuplicate        = "DUPLICATE_ENTRY"
	CodeIdempotency      = "IDEMPOTENCY_CONFLICT"
)

// AppError carries a machine-readable code, a client-safe message and the
// HTTP status it maps to. Err is logged but never rendered.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Retryable reports whether resending the same request can succeed.
func (e *AppError) Retryable() bool {
	return e.Code == CodeConcurrentUpdate || e.HTTPStatus >= http.StatusInternalServerError
}

// WithDetail adds a key to Details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// NewValidation rejects malformed input (400).
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound reports a missing record (404).
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule reports a rejected operation under the given code (422).
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewItemNotFound is returned when an outflow references a name with no catalog row.
func NewItemNotFound(itemName string) *AppError {
	return &AppError{
		Code:       CodeItemNotFound,
		Message:    fmt.Sprintf("Item %q not found in catalog", itemName),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"item_name": itemName},
	}
}

// NewInsufficientStock creates a stock shortage error.
func NewInsufficientStock(itemName string, available, requested int64) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    fmt.Sprintf("Insufficient stock for %q: available %d, requested %d", itemName, available, requested),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"item_name": itemName,
			"available": available,
			"requested": requested,
		},
	}
}

// NewInternal wraps an unexpected failure. The client only sees a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict reports a concurrent-modification or lock failure (409).
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewConcurrentUpdate reports a lock timeout, deadlock or canceled statement.
// The same request may succeed when sent again.
func NewConcurrentUpdate(sqlstate string) *AppError {
	return &AppError{
		Code:       CodeConcurrentUpdate,
		Message:    "concurrent update, retry the request",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"sqlstate": sqlstate},
	}
}

// NewDuplicate reports a unique-constraint violation (409).
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// NewIdempotencyConflict is returned while the first request with key is still running.
func NewIdempotencyConflict(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotency,
		Message:    "Operation already in progress",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// NewIdempotencyMismatch is returned when a key is reused for a different request.
func NewIdempotencyMismatch(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotency,
		Message:    "Idempotency key mismatch",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// AsAppError finds an AppError in the chain of err.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound reports whether err is a NOT_FOUND AppError.
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// Package apperror provides the tagged error kinds used across the service.
// Callers branch on Code instead of matching message strings; every business
// failure maps to exactly one code.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes.
const (
	// Infrastructure failures (5xx). Not retried by business code.
	CodeInternal           = "INTERNAL_ERROR"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"

	// Request shape violations (400).
	CodeValidation = "VALIDATION_FAILED"

	// Business rule violations (422).
	CodeInvalidReference  = "INVALID_REFERENCE"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeNoSuchBalance     = "NO_SUCH_BALANCE"

	// Authorization (401, 403).
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404).
	CodeNotFound = "NOT_FOUND"

	// Conflicts (409).
	CodeConflict               = "CONFLICT"
	CodeNumberConflict         = "DOCUMENT_NUMBER_CONFLICT"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeIdempotency            = "IDEMPOTENCY_CONFLICT"
)

// AppError is the standard error type for the service.
type AppError struct {
	// Code is a machine-readable error identifier.
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Details carries additional context (field messages, quantities, ids).
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code.
	HTTPStatus int `json:"-"`

	// Err is the underlying error (never exposed in JSON).
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap supports errors.Is/As over the cause chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to the error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a validation error (400) with a single message.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewValidationMessages creates a validation error carrying every field-level
// message collected from a request. Nothing may be persisted once it fires.
func NewValidationMessages(messages []string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    strings.Join(messages, "; "),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"messages": messages},
	}
}

// NewInvalidReference is returned when a movement references a warehouse,
// product or counterparty that is missing, deleted or inactive.
func NewInvalidReference(entity string, refID any, reason string) *AppError {
	return &AppError{
		Code:       CodeInvalidReference,
		Message:    fmt.Sprintf("%s reference is invalid: %s", entity, reason),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"entity": entity, "id": refID, "reason": reason},
	}
}

// NewInsufficientStock reports an outbound request exceeding the current
// balance. Both quantities are included so the caller can show the shortfall.
func NewInsufficientStock(warehouseID, productID string, current, requested int64) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    fmt.Sprintf("insufficient stock: %d on hand, %d requested", current, requested),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"warehouse_id": warehouseID,
			"product_id":   productID,
			"current":      current,
			"requested":    requested,
		},
	}
}

// NewNoSuchBalance is returned when an outbound movement targets a
// (warehouse, product) pair that has never received stock.
func NewNoSuchBalance(warehouseID, productID string) *AppError {
	return &AppError{
		Code:       CodeNoSuchBalance,
		Message:    "no stock exists to draw down for this warehouse and product",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"warehouse_id": warehouseID,
			"product_id":   productID,
		},
	}
}

// NewNumberConflict signals a duplicate document number detected by the
// unique constraint at commit time. The posting engine retries these with a
// regenerated number before giving up.
func NewNumberConflict(number string) *AppError {
	return &AppError{
		Code:       CodeNumberConflict,
		Message:    fmt.Sprintf("document number %s already exists", number),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"document_number": number},
	}
}

// NewStorageUnavailable wraps a connection or transaction infrastructure
// failure. Fatal for the operation; never retried by business code.
func NewStorageUnavailable(err error) *AppError {
	return &AppError{
		Code:       CodeStorageUnavailable,
		Message:    "storage is unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewNotFound creates a not-found error (404).
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewConcurrentModification creates an optimistic locking error.
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "record was modified by another user, refresh and try again",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal error that hides details from the client.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401).
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403).
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a generic conflict error (409).
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewIdempotencyConflict is returned while the same idempotency key is still
// being processed by another request.
func NewIdempotencyConflict(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotency,
		Message:    "operation already in progress or completed",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// NewIdempotencyMismatch is returned when an idempotency key is reused for a
// different request body or operation.
func NewIdempotencyMismatch(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotency,
		Message:    "idempotency key reused for a different request",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// --- Helpers ---

// IsAppError reports whether err carries an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts an AppError from the error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns the HTTP status for any error.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func is(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound reports whether err is a CodeNotFound error.
func IsNotFound(err error) bool { return is(err, CodeNotFound) }

// IsValidation reports whether err is a CodeValidation error.
func IsValidation(err error) bool { return is(err, CodeValidation) }

// IsInvalidReference reports whether err is a CodeInvalidReference error.
func IsInvalidReference(err error) bool { return is(err, CodeInvalidReference) }

// IsInsufficientStock reports whether err is a CodeInsufficientStock error.
func IsInsufficientStock(err error) bool { return is(err, CodeInsufficientStock) }

// IsNoSuchBalance reports whether err is a CodeNoSuchBalance error.
func IsNoSuchBalance(err error) bool { return is(err, CodeNoSuchBalance) }

// IsNumberConflict reports whether err is a CodeNumberConflict error.
func IsNumberConflict(err error) bool { return is(err, CodeNumberConflict) }

// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All numbering and document errors surface to callers as AppError.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal         = "INTERNAL_ERROR"
	CodeAllocationFailed = "ALLOCATION_FAILED"
	CodeDuplicateNumber  = "DUPLICATE_NUMBER"

	// Validation errors (400)
	CodeValidation            = "VALIDATION_ERROR"
	CodeMissingDepartmentCode = "MISSING_DEPARTMENT_CODE"
	CodeInvalidNumberFormat   = "INVALID_NUMBER_FORMAT"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict               = "CONFLICT"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
)

// AppError is the standard error type for the service.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (key parts, offending token, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewAllocationFailed is returned when the atomic counter increment could not be
// committed. No value was issued.
func NewAllocationFailed(err error) *AppError {
	return &AppError{
		Code:       CodeAllocationFailed,
		Message:    "Could not allocate document number",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewMissingDepartmentCode is returned when department scope is requested without a code.
func NewMissingDepartmentCode() *AppError {
	return &AppError{
		Code:       CodeMissingDepartmentCode,
		Message:    "Department code is required for department scope",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"field": "departmentCode"},
	}
}

// NewDuplicateNumber signals that a formatted number already exists on another document.
// With atomic allocation this can only come from a formatter/calendar bug.
func NewDuplicateNumber(number string, err error) *AppError {
	return &AppError{
		Code:       CodeDuplicateNumber,
		Message:    "Document number already exists",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"number": number},
		Err:        err,
	}
}

// NewInvalidNumberFormat is returned by the parser when no template matches.
func NewInvalidNumberFormat(number, reason string) *AppError {
	return &AppError{
		Code:       CodeInvalidNumberFormat,
		Message:    "Document number does not match any known template",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"number": number, "reason": reason},
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether the error chain carries an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsAllocationFailed checks if error is CodeAllocationFailed
func IsAllocationFailed(err error) bool {
	return HasCode(err, CodeAllocationFailed)
}

// IsMissingDepartmentCode checks if error is CodeMissingDepartmentCode
func IsMissingDepartmentCode(err error) bool {
	return HasCode(err, CodeMissingDepartmentCode)
}

// IsDuplicateNumber checks if error is CodeDuplicateNumber
func IsDuplicateNumber(err error) bool {
	return HasCode(err, CodeDuplicateNumber)
}

// IsInvalidNumberFormat checks if error is CodeInvalidNumberFormat
func IsInvalidNumberFormat(err error) bool {
	return HasCode(err, CodeInvalidNumberFormat)
}

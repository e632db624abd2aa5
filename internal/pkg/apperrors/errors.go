// internal/pkg/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Error is an application error carrying the HTTP status it maps to.
// Services return these; the HTTP layer translates them into responses.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// New creates an application error with an explicit status code
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Validation creates a 400 error for invalid input
func Validation(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

// Validationf creates a 400 error with a formatted message
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Code: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates a 401 error
func Unauthorized(message string) *Error {
	return &Error{Code: http.StatusUnauthorized, Message: message}
}

// Forbidden creates a 403 error
func Forbidden(message string) *Error {
	return &Error{Code: http.StatusForbidden, Message: message}
}

// NotFound creates a 404 error
func NotFound(message string) *Error {
	return &Error{Code: http.StatusNotFound, Message: message}
}

// Conflict creates a duplicate-resource error. Duplicates surface as 400
// to keep the error contract uniform with validation failures.
func Conflict(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

// InsufficientStock creates the error returned when a checkout or cart
// operation asks for more units than a product has
func InsufficientStock(productName string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: fmt.Sprintf("%s has insufficient stock", productName)}
}

// InvalidState creates a 400 error for operations not allowed in the
// resource's current state
func InvalidState(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

// Internal creates a 500 error
func Internal(message string) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: message}
}

// FromDB translates a database error into an application error.
// Record-not-found becomes a 404 with the given message.
func FromDB(err error, notFoundMessage string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(notFoundMessage)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict("Duplicate entry")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Validation("Invalid reference to another table")
	default:
		return err
	}
}

// Is reports whether err is an application error with the given code
func Is(err error, code int) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// StatusCode returns the HTTP status for an error. Unrecognized errors
// map to 500.
func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// UserMessage returns the message safe to show to API clients.
// Internal errors are masked.
func UserMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal Server Error"
}

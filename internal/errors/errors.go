// Package errors provides typed service errors with machine-readable codes.
// Every domain-rule violation raised by the service layer is one of these, so
// handlers can map codes to transport status without string matching.
package errors

import (
	"fmt"
	"net/http"
)

// Error codes carried by every *Error.
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBusinessRule = "BUSINESS_RULE"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL"
)

// Error is a service error with a machine-readable code and a human-readable
// message. The message is the only thing the core formats for display; the
// calling layer decides how to render it.
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// New creates an error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap annotates an underlying error with a code and message.
func Wrap(err error, code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// NotFound reports that a referenced resource does not exist.
func NotFound(resource, id string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// InvalidInput reports a malformed input field.
func InvalidInput(field, message string) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("%s: %s", field, message),
	}
}

// BusinessRule reports that a domain invariant would be violated.
func BusinessRule(message string) *Error {
	return &Error{Code: ErrCodeBusinessRule, Message: message}
}

// Unauthorized reports that the actor lacks permission for the operation.
func Unauthorized(message string) *Error {
	return &Error{Code: ErrCodeUnauthorized, Message: message}
}

// CodeOf returns the error code, or ErrCodeInternal for untyped errors.
func CodeOf(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err is a typed error with the given code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps an error to the HTTP status the handler layer should write.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeBusinessRule:
		return http.StatusUnprocessableEntity
	case ErrCodeUnauthorized:
		return http.StatusForbidden
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

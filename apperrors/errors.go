// Package apperrors defines the error taxonomy shared by the node pipeline,
// the store and the HTTP handlers.
//
// Services return *Error values; handlers map them to a status with
// HTTPStatus and write {"error": message}.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error classification.
type Code string

const (
	CodeValidation          Code = "VALIDATION"
	CodeMalformedCompletion Code = "MALFORMED_COMPLETION"
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	CodeFlashcardGeneration Code = "FLASHCARD_GENERATION"
	CodeNotFound            Code = "NOT_FOUND"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeRateLimited         Code = "RATE_LIMITED"
	CodeConflict            Code = "CONFLICT"
	CodeInternal            Code = "INTERNAL"
)

// HTTPStatus returns the status code used when an error with this code
// reaches the HTTP boundary.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeConflict:
		return http.StatusConflict
	case CodeMalformedCompletion:
		return http.StatusBadGateway
	case CodeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error with optional field-level details.
type Error struct {
	Code    Code              `json:"code"`
	Message string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
	Cause   error             `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two *Error values by code so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrValidation          = &Error{Code: CodeValidation}
	ErrMalformedCompletion = &Error{Code: CodeMalformedCompletion}
	ErrUpstreamUnavailable = &Error{Code: CodeUpstreamUnavailable}
	ErrFlashcardGeneration = &Error{Code: CodeFlashcardGeneration}
	ErrNotFound            = &Error{Code: CodeNotFound}
	ErrUnauthorized        = &Error{Code: CodeUnauthorized}
	ErrForbidden           = &Error{Code: CodeForbidden}
	ErrRateLimited         = &Error{Code: CodeRateLimited}
	ErrConflict            = &Error{Code: CodeConflict}
)

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

func ValidationWithDetails(message string, details map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Details: details}
}

func MalformedCompletion(message string, details map[string]string, cause error) *Error {
	return &Error{Code: CodeMalformedCompletion, Message: message, Details: details, Cause: cause}
}

func UpstreamUnavailable(message string, cause error) *Error {
	return &Error{Code: CodeUpstreamUnavailable, Message: message, Cause: cause}
}

func FlashcardGeneration(message string, cause error) *Error {
	return &Error{Code: CodeFlashcardGeneration, Message: message, Cause: cause}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

func RateLimited(message string) *Error {
	return &Error{Code: CodeRateLimited, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

func Internal(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, Cause: cause}
}

// CodeOf returns the code of err, or CodeInternal when err is not classified.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// As is errors.As specialised to *Error.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

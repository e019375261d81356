package store

import (
	"fmt"
	"net/http"
)

// Error is a storage error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors regardless of the wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
	}

	ErrInvalidInput = &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid input",
	}

	// ErrSlotEmpty is returned by a Slot that has never been written.
	ErrSlotEmpty = &Error{
		Code:    http.StatusNotFound,
		Message: "document slot is empty",
	}

	// ErrQuotaExceeded is returned when the serialized document does not fit the slot.
	ErrQuotaExceeded = &Error{
		Code:    http.StatusRequestEntityTooLarge,
		Message: "local storage quota exceeded",
	}

	// ErrWriteFailed covers every other failure to persist the document.
	ErrWriteFailed = &Error{
		Code:    http.StatusInternalServerError,
		Message: "failed to write document",
	}
)

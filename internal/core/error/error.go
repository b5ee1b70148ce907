package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is the user-facing fallback for internal errors.
	SystemErrorMessage = "internal server error"
	RedisErrorMessage  = "redis operation failed"
)

// AppError wraps an underlying error with an HTTP status and a message that
// is safe to show to the caller.
type AppError struct {
	Err     error
	Status  int
	Message string
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

func BadRequest(message string) *AppError {
	return New(nil, http.StatusBadRequest, message)
}

func TooLarge(err error) *AppError {
	return New(err, http.StatusRequestEntityTooLarge, "request body too large")
}

func Internal(err error) *AppError {
	return New(err, http.StatusInternalServerError, SystemErrorMessage)
}

// Is reports whether target matches the wrapped error.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

// From returns err as an *AppError, wrapping anything else as Internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var app *AppError
	if errors.As(err, &app) {
		return app
	}
	return Internal(err)
}

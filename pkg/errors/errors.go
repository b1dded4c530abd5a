// Package errors defines the error taxonomy for the text retrieval engine:
// sentinel errors for the failure classes callers branch on, plus an
// AppError wrapper carrying an HTTP status for the serving layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSourceNotFound indicates the document source location itself does
	// not exist. It aborts an index build.
	ErrSourceNotFound = errors.New("document source not found")

	// ErrInvalidConfig indicates invalid constructor parameters: a
	// non-positive suggestion count, or corrupted corpus statistics handed
	// to the search engine.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDocumentRead indicates a single document could not be read or
	// tokenized. It is recovered locally: the document is skipped and the
	// build continues.
	ErrDocumentRead = errors.New("document read failed")

	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrTimeout      = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

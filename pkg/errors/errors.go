package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrIndexNotReady    = errors.New("index not ready")
	ErrBuildInProgress  = errors.New("index build already in progress")
	ErrInternal         = errors.New("internal error")
	ErrTimeout          = errors.New("operation timed out")
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

// NotFound wraps cause as an ErrResourceNotFound naming the resource that
// could not be opened.
func NotFound(resource string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrResourceNotFound, resource, cause)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrBuildInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrIndexNotReady), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

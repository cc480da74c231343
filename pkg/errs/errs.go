package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure categories the platform distinguishes.
// Handlers map these to HTTP status codes with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrOutOfBounds  = errors.New("location out of supported bounds")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream collaborator failure")
	ErrPersistence  = errors.New("persistence failure")
)

// Invalidf wraps ErrInvalidInput with a formatted detail message.
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted detail message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflictf wraps ErrConflict with a formatted detail message.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Upstreamf wraps ErrUpstream around a collaborator error.
func Upstreamf(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, fmt.Sprintf(format, args...), err)
}

// Persistencef wraps ErrPersistence around a store error.
func Persistencef(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, fmt.Sprintf(format, args...), err)
}

// HTTPStatus maps an error to the HTTP status code handlers respond
// with. Unrecognized errors are treated as internal failures.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrOutOfBounds):
		return 400
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrConflict):
		return 409
	case errors.Is(err, ErrUpstream):
		return 502
	default:
		return 500
	}
}

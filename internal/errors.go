package internal

import (
	"errors"
	"net/http"
)

// HTTPError is an error a handler returns to choose the response status.
type HTTPError struct {
	Err       error  // cause, logged but never sent to the client
	Message   string // client-facing text
	ErrorCode string // optional machine-readable code
	Code      int    // HTTP status
}

func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status.
func (e *HTTPError) StatusCode() int { return e.Code }

// StatusText returns the standard text for the status.
func (e *HTTPError) StatusText() string { return http.StatusText(e.Code) }

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates an HTTPError. An empty message defaults to the
// status text.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithErrorCode sets a machine-readable error code.
func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) { e.ErrorCode = code }
}

// WithError attaches the underlying cause.
func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) { e.Err = err }
}

// ErrBadRequest returns a 400 HTTPError.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

// ErrForbidden returns a 403 HTTPError.
func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

// ErrNotFound returns a 404 HTTPError.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

// ErrInternal returns a 500 HTTPError.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// StatusCode returns the HTTP status for err, taken from the first error
// in its chain with a StatusCode() int method. Anything else maps to 500.
func StatusCode(err error) int {
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) && coded.StatusCode() > 0 {
		return coded.StatusCode()
	}
	return http.StatusInternalServerError
}

// publicMessage is the text safe to show the client for err: an
// HTTPError's message below 500, the bare status text otherwise.
func publicMessage(err error, code int) string {
	var httpErr *HTTPError
	if code < http.StatusInternalServerError && errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return http.StatusText(code)
}

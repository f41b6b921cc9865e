package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// PanicError is returned by Recover in place of a handler panic.
type PanicError struct {
	Value any
	Route string
	Stack []byte // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	if e.Route == "" {
		return fmt.Sprintf("panic: %v", e.Value)
	}
	return fmt.Sprintf("panic in route %q: %v", e.Route, e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// StatusCode maps panics to 500.
func (e *PanicError) StatusCode() int {
	return http.StatusInternalServerError
}

// TimeoutError is returned by Timeout when a handler overruns its deadline.
type TimeoutError struct {
	Route    string
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("route %q timed out after %s", e.Route, e.Duration)
}

// StatusCode maps timeouts to 503.
func (e *TimeoutError) StatusCode() int {
	return http.StatusServiceUnavailable
}

// RateLimitError is returned by RateLimit when a request is rejected.
type RateLimitError struct {
	Route      string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("route %q rate limited, retry after %s", e.Route, e.RetryAfter)
}

// StatusCode maps rejections to 429.
func (e *RateLimitError) StatusCode() int {
	return http.StatusTooManyRequests
}

// AsRateLimitError returns the *RateLimitError in err's chain.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	return as[*RateLimitError](err)
}

// IsPanicError reports whether err wraps a *PanicError.
func IsPanicError(err error) bool {
	_, ok := AsPanicError(err)
	return ok
}

// IsTimeoutError reports whether err wraps a *TimeoutError.
func IsTimeoutError(err error) bool {
	_, ok := AsTimeoutError(err)
	return ok
}

// AsPanicError returns the *PanicError in err's chain.
func AsPanicError(err error) (*PanicError, bool) {
	return as[*PanicError](err)
}

// AsTimeoutError returns the *TimeoutError in err's chain.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	return as[*TimeoutError](err)
}

func as[T error](err error) (T, bool) {
	var target T
	ok := errors.As(err, &target)
	return target, ok
}

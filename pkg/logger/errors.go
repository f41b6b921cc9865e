package logger

import "errors"

// ErrSentryFlush is returned by the Sentry flush hook when buffered events
// could not be delivered before the deadline.
var ErrSentryFlush = errors.New("logger: sentry flush timed out")

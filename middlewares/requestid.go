package middlewares

import (
	"github.com/google/uuid"

	"github.com/dmitrymomot/waymark/internal"
	"github.com/dmitrymomot/waymark/pkg/logger"
)

// maxRequestIDLen caps upstream IDs; longer ones are replaced.
const maxRequestIDLen = 128

type requestIDKey struct{}

// DefaultRequestIDHeaders are searched in order for an upstream request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string
	ResponseHeader string
	Headers        []string
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders replaces the headers searched for an upstream ID.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Headers = headers
	}
}

// WithRequestIDGenerator replaces the UUIDv4 generator.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		if gen != nil {
			cfg.Generator = gen
		}
	}
}

// WithRequestIDResponseHeader sets the header the ID is echoed in.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.ResponseHeader = header
	}
}

// RequestID returns middleware that tags every request with an ID. An
// upstream ID from the configured headers is reused when it is printable
// ASCII of at most 128 bytes; otherwise a new one is generated.
// The ID is stored in the request context and echoed in the response.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      uuid.NewString,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			id := upstreamID(c, cfg.Headers)
			if id == "" {
				id = cfg.Generator()
			}

			c.Set(requestIDKey{}, id)
			if cfg.ResponseHeader != "" {
				c.SetHeader(cfg.ResponseHeader, id)
			}
			return next(c)
		}
	}
}

func upstreamID(c internal.Context, headers []string) string {
	for _, h := range headers {
		if v := c.Header(h); v != "" && validRequestID(v) {
			return v
		}
	}
	return ""
}

func validRequestID(id string) bool {
	if len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID returns the request ID, or "" outside RequestID.
func GetRequestID(c internal.Context) string {
	id, _ := c.Get(requestIDKey{}).(string)
	return id
}

// RequestIDExtractor adds "request_id" to log records. Pass it to
// WithLogger or logger.NewWithConfig.
func RequestIDExtractor() logger.ContextExtractor {
	return logger.StringValue(requestIDKey{}, "request_id")
}

package middlewares

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/waymark/internal"
)

const defaultTracerName = "github.com/dmitrymomot/waymark"

// TracingConfig configures the tracing middleware.
type TracingConfig struct {
	Provider   trace.TracerProvider
	Propagator propagation.TextMapPropagator
	TracerName string
}

// TracingOption configures TracingConfig.
type TracingOption func(*TracingConfig)

// WithTracerProvider sets the provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(cfg *TracingConfig) {
		if tp != nil {
			cfg.Provider = tp
		}
	}
}

// WithPropagator sets how an upstream trace context is read from request
// headers. Defaults to the global propagator.
func WithPropagator(p propagation.TextMapPropagator) TracingOption {
	return func(cfg *TracingConfig) {
		if p != nil {
			cfg.Propagator = p
		}
	}
}

// Tracing returns middleware that wraps each request in a server span
// named "METHOD route" ("METHOD unmatched" when no route matched). The
// span context replaces the request context, so handlers that pass c on
// create child spans. 5xx results mark the span as failed.
func Tracing(opts ...TracingOption) internal.Middleware {
	cfg := &TracingConfig{
		Provider:   otel.GetTracerProvider(),
		Propagator: otel.GetTextMapPropagator(),
		TracerName: defaultTracerName,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	tracer := cfg.Provider.Tracer(cfg.TracerName)

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			req := c.Request()
			routeName := c.RouteName()
			spanName := req.Method + " " + routeName
			if routeName == "" {
				spanName = req.Method + " unmatched"
			}

			parent := cfg.Propagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header))
			ctx, span := tracer.Start(parent, spanName,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", req.Method),
					attribute.String("url.path", req.URL.Path),
					attribute.String("http.route", routeName),
				),
			)
			defer span.End()
			c.SetContext(ctx)

			err := next(c)

			status := responseStatus(c, err)
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if err != nil {
				span.RecordError(err)
			}
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			return err
		}
	}
}

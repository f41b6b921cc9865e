package middlewares_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/waymark"
	"github.com/dmitrymomot/waymark/middlewares"
	"github.com/dmitrymomot/waymark/pkg/logger"
)

type routes func(r waymark.Router)

func (f routes) Routes(r waymark.Router) { f(r) }

func serve(app *waymark.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func get(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

// logLines decodes JSON log output into one map per line.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	app := waymark.New(
		waymark.WithMiddleware(middlewares.RequestID()),
		waymark.WithHandlers(routes(func(r waymark.Router) {
			r.Route("id", "id", func(c waymark.Context) error {
				return c.String(http.StatusOK, middlewares.GetRequestID(c))
			})
		})),
	)

	t.Run("generated", func(t *testing.T) {
		t.Parallel()
		rec := serve(app, get("/id"))
		id := rec.Body.String()
		require.Len(t, id, 36)
		require.Equal(t, id, rec.Header().Get("X-Request-ID"))
	})

	t.Run("from upstream header", func(t *testing.T) {
		t.Parallel()
		req := get("/id")
		req.Header.Set("X-Correlation-ID", "upstream-1")
		rec := serve(app, req)
		require.Equal(t, "upstream-1", rec.Body.String())
	})

	t.Run("invalid upstream replaced", func(t *testing.T) {
		t.Parallel()
		req := get("/id")
		req.Header.Set("X-Request-ID", strings.Repeat("a", 200))
		rec := serve(app, req)
		require.Len(t, rec.Body.String(), 36)

		req = get("/id")
		req.Header.Set("X-Request-ID", "has space")
		rec = serve(app, req)
		require.Len(t, rec.Body.String(), 36)
	})

	t.Run("custom generator", func(t *testing.T) {
		t.Parallel()
		app := waymark.New(
			waymark.WithMiddleware(middlewares.RequestID(
				middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
				middlewares.WithRequestIDResponseHeader("X-Trace"),
			)),
		)
		rec := serve(app, get("/nothing"))
		require.Equal(t, "fixed", rec.Header().Get("X-Trace"))
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithConfig(logger.Config{Output: &buf}, middlewares.RequestIDExtractor())
	app := waymark.New(
		waymark.WithCustomLogger(log),
		waymark.WithMiddleware(middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "req-1" }),
		)),
		waymark.WithHandlers(routes(func(r waymark.Router) {
			r.Route("hello", "hello", func(c waymark.Context) error {
				c.LogInfo("handling")
				return c.NoContent(http.StatusNoContent)
			})
		})),
	)

	serve(app, get("/hello"))
	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "req-1", lines[0]["request_id"])
}

func TestRecover(t *testing.T) {
	t.Parallel()

	var handled error
	app := waymark.New(
		waymark.WithMiddleware(middlewares.Recover()),
		waymark.WithErrorHandler(func(c waymark.Context, err error) error {
			handled = err
			return c.String(waymark.StatusCode(err), "recovered")
		}),
		waymark.WithHandlers(routes(func(r waymark.Router) {
			r.Route("panic", "panic", func(waymark.Context) error {
				panic("kaboom")
			})
		})),
	)

	rec := serve(app, get("/panic"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "recovered", rec.Body.String())

	require.True(t, middlewares.IsPanicError(handled))
	pe, ok := middlewares.AsPanicError(handled)
	require.True(t, ok)
	require.Equal(t, "kaboom", pe.Value)
	require.Equal(t, "panic", pe.Route)
	require.NotEmpty(t, pe.Stack)
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	app := waymark.New(
		waymark.WithMiddleware(middlewares.Timeout(20*time.Millisecond)),
		waymark.WithHandlers(routes(func(r waymark.Router) {
			r.Route("slow", "slow", func(c waymark.Context) error {
				<-c.Done()
				return c.Err()
			})
			r.Route("fast", "fast", func(c waymark.Context) error {
				return c.String(http.StatusOK, "fast")
			})
		})),
	)

	rec := serve(app, get("/slow"))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(app, get("/fast"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "fast", rec.Body.String())
}

func TestTimeoutError(t *testing.T) {
	t.Parallel()

	err := error(&middlewares.TimeoutError{Route: "slow", Duration: time.Second})
	require.True(t, middlewares.IsTimeoutError(err))
	require.False(t, middlewares.IsPanicError(err))
	require.Equal(t, http.StatusServiceUnavailable, waymark.StatusCode(err))

	te, ok := middlewares.AsTimeoutError(err)
	require.True(t, ok)
	require.Equal(t, time.Second, te.Duration)
	require.Equal(t, `route "slow" timed out after 1s`, te.Error())

	_, ok = middlewares.AsTimeoutError(errors.New("other"))
	require.False(t, ok)
}

func TestLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	app := waymark.New(
		waymark.WithCustomLogger(slog.New(slog.NewJSONHandler(&buf, nil))),
		waymark.WithMiddleware(middlewares.Logging(
			middlewares.WithLoggingSkip(func(c waymark.Context) bool {
				return c.RouteName() == "quiet"
			}),
		)),
		waymark.WithHandlers(routes(func(r waymark.Router) {
			r.Route("post", "blog/<slug>", func(c waymark.Context) error {
				return c.String(http.StatusOK, c.Param("slug"))
			})
			r.Route("fail", "fail", func(c waymark.Context) error {
				return errors.New("boom")
			})
			r.Route("quiet", "quiet", func(c waymark.Context) error {
				return c.NoContent(http.StatusNoContent)
			})
		})),
	)

	serve(app, get("/blog/hello"))
	serve(app, get("/fail"))
	serve(app, get("/quiet"))
	serve(app, get("/missing"))

	var requests []map[string]any
	for _, l := range logLines(t, &buf) {
		if l["msg"] == "request" {
			requests = append(requests, l)
		}
	}
	require.Len(t, requests, 3)

	assert.Equal(t, "INFO", requests[0]["level"])
	assert.Equal(t, "post", requests[0]["route"])
	assert.Equal(t, "/blog/hello", requests[0]["path"])
	assert.InDelta(t, 200, requests[0]["status"], 0)

	assert.Equal(t, "ERROR", requests[1]["level"])
	assert.InDelta(t, 500, requests[1]["status"], 0)
	assert.Equal(t, "boom", requests[1]["error"])

	assert.Equal(t, "WARN", requests[2]["level"])
	assert.Equal(t, "", requests[2]["route"])
	assert.InDelta(t, 404, requests[2]["status"], 0)
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	app := waymark.New(
		waymark.WithMetrics("/metrics", reg),
		waymark.WithMiddleware(middlewares.Metrics(reg, middlewares.WithMetricsNamespace("blog"))),
		waymark.WithHandlers(routes(func(r waymark.Router) {
			r.Route("post", "blog/<slug>", func(c waymark.Context) error {
				return c.String(http.StatusOK, c.Param("slug"))
			})
		})),
	)

	serve(app, get("/blog/a"))
	serve(app, get("/blog/b"))
	serve(app, get("/nope"))

	body := serve(app, get("/metrics")).Body.String()
	assert.Contains(t, body, `blog_http_requests_total{method="GET",route="post",status="200"} 2`)
	assert.Contains(t, body, `blog_http_requests_total{method="GET",route="",status="404"} 1`)
	assert.Contains(t, body, `blog_http_request_duration_seconds_count{method="GET",route="post",status="200"} 2`)
}

func TestTracing(t *testing.T) {
	t.Parallel()

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	var handlerSpan trace.SpanContext
	app := waymark.New(
		waymark.WithMiddleware(middlewares.Tracing(
			middlewares.WithTracerProvider(tp),
			middlewares.WithPropagator(propagation.TraceContext{}),
		)),
		waymark.WithHandlers(routes(func(r waymark.Router) {
			r.Route("post", "blog/<slug>", func(c waymark.Context) error {
				handlerSpan = trace.SpanContextFromContext(c)
				return c.String(http.StatusOK, "ok")
			})
			r.Route("fail", "fail", func(waymark.Context) error {
				return errors.New("boom")
			})
		})),
	)

	req := get("/blog/hello")
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	serve(app, req)
	serve(app, get("/fail"))
	serve(app, get("/nope"))

	spans := rec.Ended()
	require.Len(t, spans, 3)

	ok := spans[0]
	assert.Equal(t, "GET post", ok.Name())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", ok.SpanContext().TraceID().String())
	assert.Equal(t, ok.SpanContext().SpanID(), handlerSpan.SpanID())
	assert.Contains(t, ok.Attributes(), attribute.Int("http.response.status_code", 200))
	assert.Contains(t, ok.Attributes(), attribute.String("http.route", "post"))
	assert.Equal(t, codes.Unset, ok.Status().Code)

	failed := spans[1]
	assert.Equal(t, "GET fail", failed.Name())
	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.Contains(t, failed.Attributes(), attribute.Int("http.response.status_code", 500))

	assert.Equal(t, "GET unmatched", spans[2].Name())
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	app := waymark.New(
		waymark.WithMiddleware(middlewares.RateLimit(0.001, 2)),
		waymark.WithHandlers(routes(func(r waymark.Router) {
			r.Route("post", "blog/<slug>", func(c waymark.Context) error {
				return c.String(http.StatusOK, c.Param("slug"))
			})
			r.Route("about", "about", func(c waymark.Context) error {
				return c.String(http.StatusOK, "about")
			})
		})),
	)

	assert.Equal(t, http.StatusOK, serve(app, get("/blog/a")).Code)
	assert.Equal(t, http.StatusOK, serve(app, get("/blog/b")).Code)

	rec := serve(app, get("/blog/c"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Buckets are per route.
	assert.Equal(t, http.StatusOK, serve(app, get("/about")).Code)
}

func TestRateLimit_CustomKey(t *testing.T) {
	t.Parallel()

	var rejected error
	app := waymark.New(
		waymark.WithMiddleware(middlewares.RateLimit(0.001, 1,
			middlewares.WithRateLimitKey(func(c waymark.Context) string {
				return c.Header("X-Client")
			}),
		)),
		waymark.WithErrorHandler(func(c waymark.Context, err error) error {
			rejected = err
			return c.String(waymark.StatusCode(err), "slow down")
		}),
		waymark.WithHandlers(routes(func(r waymark.Router) {
			r.Route("about", "about", func(c waymark.Context) error {
				return c.String(http.StatusOK, "about")
			})
		})),
	)

	client := func(id string) *http.Request {
		req := get("/about")
		req.Header.Set("X-Client", id)
		return req
	}

	assert.Equal(t, http.StatusOK, serve(app, client("a")).Code)
	assert.Equal(t, http.StatusOK, serve(app, client("b")).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(app, client("a")).Code)

	rle, ok := middlewares.AsRateLimitError(rejected)
	require.True(t, ok)
	assert.Equal(t, "about", rle.Route)
	assert.Positive(t, rle.RetryAfter)
}

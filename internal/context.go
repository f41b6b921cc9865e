package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/dmitrymomot/waymark/pkg/route"
)

// Context is what a handler sees for one dispatched request: the matched
// route and its params, the request and response, and reverse routing
// against the application's tables.
//
// It implements context.Context by delegating to the request context, so
// it can be passed to anything that takes a context.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter

	// Param returns a matched route parameter, route defaults included.
	// Missing parameters yield "".
	Param(name string) string
	// Params returns a copy of the matched parameters.
	Params() route.Params
	// RouteName returns the matched route's name, or "" when nothing matched.
	RouteName() string

	Query(name string) string
	QueryDefault(name, defaultValue string) string
	Header(name string) string
	SetHeader(name, value string)

	JSON(code int, v any) error
	String(code int, s string) error
	NoContent(code int) error
	Redirect(code int, url string) error

	// URL reverses a named route. Local routes yield a site-absolute path
	// ("/blog/2024"), external routes an absolute URL on their host.
	URL(name string, params route.Params) (string, error)
	// RedirectRoute redirects to the URL of a named route.
	RedirectRoute(code int, name string, params route.Params) error

	// Error builds an HTTPError for the handler to return.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	Written() bool
	Status() int

	// Logger returns the application logger. The LogX helpers add the
	// matched route to every record.
	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context; Get reads it back.
	Set(key, value any)
	Get(key any) any
	// SetContext replaces the request context, e.g. to attach a deadline.
	SetContext(ctx context.Context)
}

type requestContext struct {
	request  *http.Request
	response *ResponseWriter
	app      *App
	route    *route.Route
	params   route.Params
}

func newContext(w *ResponseWriter, r *http.Request, app *App, rt *route.Route, params route.Params) *requestContext {
	return &requestContext{request: r, response: w, app: app, route: rt, params: params}
}

func (c *requestContext) ctx() context.Context { return c.request.Context() }

func (c *requestContext) Deadline() (time.Time, bool) { return c.ctx().Deadline() }
func (c *requestContext) Done() <-chan struct{}       { return c.ctx().Done() }
func (c *requestContext) Err() error                  { return c.ctx().Err() }
func (c *requestContext) Value(key any) any           { return c.ctx().Value(key) }

func (c *requestContext) Request() *http.Request        { return c.request }
func (c *requestContext) Response() http.ResponseWriter { return c.response }

func (c *requestContext) Param(name string) string { return c.params[name] }

func (c *requestContext) Params() route.Params {
	out := maps.Clone(c.params)
	if out == nil {
		out = route.Params{}
	}
	return out
}

func (c *requestContext) RouteName() string {
	if c.route == nil {
		return ""
	}
	return c.route.Name()
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return defaultValue
}

func (c *requestContext) Header(name string) string { return c.request.Header.Get(name) }

func (c *requestContext) SetHeader(name, value string) { c.response.Header().Set(name, value) }

func (c *requestContext) JSON(code int, v any) error {
	c.begin(code, "application/json; charset=utf-8")
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.begin(code, "text/plain; charset=utf-8")
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) begin(code int, contentType string) {
	c.response.Header().Set("Content-Type", contentType)
	c.response.WriteHeader(code)
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) URL(name string, params route.Params) (string, error) {
	return c.app.URL(name, params)
}

func (c *requestContext) RedirectRoute(code int, name string, params route.Params) error {
	u, err := c.URL(name, params)
	if err != nil {
		return err
	}
	return c.Redirect(code, u)
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Written() bool { return c.response.Written() }
func (c *requestContext) Status() int   { return c.response.Status() }

func (c *requestContext) Logger() *slog.Logger { return c.app.logger }

func (c *requestContext) LogDebug(msg string, attrs ...any) { c.log(slog.LevelDebug, msg, attrs) }
func (c *requestContext) LogInfo(msg string, attrs ...any)  { c.log(slog.LevelInfo, msg, attrs) }
func (c *requestContext) LogWarn(msg string, attrs ...any)  { c.log(slog.LevelWarn, msg, attrs) }
func (c *requestContext) LogError(msg string, attrs ...any) { c.log(slog.LevelError, msg, attrs) }

func (c *requestContext) log(level slog.Level, msg string, attrs []any) {
	if name := c.RouteName(); name != "" {
		attrs = append([]any{slog.String("route", name)}, attrs...)
	}
	c.app.logger.Log(c.ctx(), level, msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	c.SetContext(context.WithValue(c.ctx(), key, value))
}

func (c *requestContext) Get(key any) any { return c.ctx().Value(key) }

func (c *requestContext) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

package route

import (
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// DefaultScheme is prefixed to external hosts that carry no scheme.
const DefaultScheme = "http"

// HostKey is the default that marks a route as external.
const HostKey = "host"

// localHosts are host defaults that keep a route internal.
var localHosts = []string{"", "local", "localhost"}

// Params maps placeholder names to values.
type Params map[string]string

// Get returns the value for name, or "" when absent.
func (p Params) Get(name string) string {
	return p[name]
}

// Filter inspects a successful match.
// Returning false rejects the match; returning non-nil params replaces them.
// req may be nil when matching outside an HTTP request.
type Filter func(r *Route, params Params, req *http.Request) (Params, bool)

// Route is a named URI template with defaults and filters.
// A Route must not be modified after it has been added to a Table.
type Route struct {
	pattern  *Pattern
	regex    map[string]string
	defaults Params
	name     string
	filters  []Filter
}

// Option configures a Route.
type Option func(*routeConfig)

type routeConfig struct {
	cache    *Cache
	defaults Params
	filters  []Filter
}

// WithDefaults sets default parameter values.
// Defaults fill in params the URI did not supply and may name keys that
// are not placeholders (e.g. "host").
func WithDefaults(d Params) Option {
	return func(c *routeConfig) {
		if c.defaults == nil {
			c.defaults = make(Params, len(d))
		}
		maps.Copy(c.defaults, d)
	}
}

// WithFilter appends filters run after a successful match, in order.
func WithFilter(f ...Filter) Option {
	return func(c *routeConfig) {
		for _, fn := range f {
			if fn != nil {
				c.filters = append(c.filters, fn)
			}
		}
	}
}

// WithMethods restricts the route to the given HTTP methods.
func WithMethods(methods ...string) Option {
	return WithFilter(Methods(methods...))
}

// WithCache compiles the template through c instead of the default cache.
func WithCache(c *Cache) Option {
	return func(cfg *routeConfig) {
		if c != nil {
			cfg.cache = c
		}
	}
}

// New builds a named route.
//
// Example:
//
//	r, err := route.New("blog", "blog(/<year>(/<slug>))",
//	    map[string]string{"year": `\d{4}`},
//	    route.WithDefaults(route.Params{"year": "2024"}),
//	)
func New(name, uri string, regex map[string]string, opts ...Option) (*Route, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	cfg := &routeConfig{cache: defaultCache}
	for _, opt := range opts {
		opt(cfg)
	}

	p, err := cfg.cache.Compile(uri, regex)
	if err != nil {
		return nil, err
	}

	return &Route{
		pattern:  p,
		regex:    maps.Clone(regex),
		defaults: cfg.defaults,
		name:     name,
		filters:  cfg.filters,
	}, nil
}

// Name returns the route name.
func (r *Route) Name() string {
	return r.name
}

// Template returns the URI template.
func (r *Route) Template() string {
	return r.pattern.URI()
}

// Pattern returns the compiled pattern.
func (r *Route) Pattern() *Pattern {
	return r.pattern
}

// Regex returns a copy of the per-key overrides.
func (r *Route) Regex() map[string]string {
	return maps.Clone(r.regex)
}

// Defaults returns a copy of the default parameters.
func (r *Route) Defaults() Params {
	return maps.Clone(r.defaults)
}

// Matches tests the route against req.URL.Path.
// Defaults fill params that are absent or empty, then filters run.
func (r *Route) Matches(req *http.Request) (Params, bool) {
	return r.match(req.URL.Path, req)
}

// MatchPath is Matches without a request; filters receive a nil request.
func (r *Route) MatchPath(path string) (Params, bool) {
	return r.match(path, nil)
}

func (r *Route) match(path string, req *http.Request) (Params, bool) {
	params, ok := r.pattern.Match(path)
	if !ok {
		return nil, false
	}

	for k, v := range r.defaults {
		if params[k] == "" {
			params[k] = v
		}
	}

	for _, f := range r.filters {
		replaced, ok := f(r, params, req)
		if !ok {
			return nil, false
		}
		if replaced != nil {
			params = replaced
		}
	}
	return params, true
}

// IsExternal reports whether the route points at another host.
func (r *Route) IsExternal() bool {
	return !slices.Contains(localHosts, r.defaults[HostKey])
}

// URI generates the route's URI from params.
// Values are percent-encoded with slashes kept intact. External routes
// are returned as absolute URLs rooted at their host default.
func (r *Route) URI(params Params) (string, error) {
	// Defaults are encoded like params so a value equal to its default
	// still elides its group.
	uri, err := r.pattern.Generate(encodeParams(r.defaults), encodeParams(params))
	if err != nil {
		return "", err
	}

	if r.IsExternal() {
		host := r.defaults[HostKey]
		if !strings.Contains(host, "://") {
			host = DefaultScheme + "://" + host
		}
		uri = strings.TrimRight(host, "/") + "/" + uri
	}
	return uri, nil
}

// URL generates an absolute URL. Internal routes are resolved against
// base (e.g. "https://example.com"); external routes ignore it.
func (r *Route) URL(base string, params Params) (string, error) {
	uri, err := r.URI(params)
	if err != nil {
		return "", err
	}
	if r.IsExternal() {
		return uri, nil
	}
	return strings.TrimRight(base, "/") + "/" + uri, nil
}

// Methods returns a filter that accepts only the given HTTP methods.
// A nil request is rejected.
func Methods(methods ...string) Filter {
	allowed := make([]string, len(methods))
	for i, m := range methods {
		allowed[i] = strings.ToUpper(m)
	}

	return func(_ *Route, _ Params, req *http.Request) (Params, bool) {
		if req == nil {
			return nil, false
		}
		return nil, slices.Contains(allowed, req.Method)
	}
}

func encodeParams(params Params) Params {
	if len(params) == 0 {
		return params
	}
	out := make(Params, len(params))
	for k, v := range params {
		out[k] = strings.ReplaceAll(url.PathEscape(v), "%2F", "/")
	}
	return out
}

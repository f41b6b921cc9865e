package internal

import (
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/dmitrymomot/waymark/pkg/route"
)

// Router is the interface handlers use to declare routes.
// Routes are matched in the order they are declared; the first match wins.
type Router interface {
	// Route declares a named route and binds h to it.
	// Panics if the template does not compile.
	Route(name, uri string, h HandlerFunc, opts ...RouteOption)

	// Bind attaches h to a route loaded from a routes file.
	// The route itself may appear or change on reload.
	Bind(name string, h HandlerFunc, mw ...Middleware)

	// Group creates an inline group; middleware added inside it
	// applies only to routes declared inside it.
	Group(fn func(r Router))

	// Use appends middleware for routes declared after this call.
	Use(mw ...Middleware)

	// Mount attaches an http.Handler at a chi pattern, bypassing the route table.
	Mount(pattern string, h http.Handler)
}

// RouteOption configures a route declared with Router.Route.
type RouteOption func(*routeConfig)

type routeConfig struct {
	regex    map[string]string
	defaults route.Params
	filters  []route.Filter
	mw       []Middleware
	methods  []string
}

// Regex sets per-placeholder expressions.
func Regex(regex map[string]string) RouteOption {
	return func(s *routeConfig) {
		if s.regex == nil {
			s.regex = make(map[string]string, len(regex))
		}
		maps.Copy(s.regex, regex)
	}
}

// Defaults sets default parameter values.
func Defaults(d route.Params) RouteOption {
	return func(s *routeConfig) {
		if s.defaults == nil {
			s.defaults = make(route.Params, len(d))
		}
		maps.Copy(s.defaults, d)
	}
}

// Methods restricts the route to the given HTTP methods.
func Methods(methods ...string) RouteOption {
	return func(s *routeConfig) {
		s.methods = append(s.methods, methods...)
	}
}

// Filter adds a match filter; see route.Filter.
func Filter(f route.Filter) RouteOption {
	return func(s *routeConfig) {
		if f != nil {
			s.filters = append(s.filters, f)
		}
	}
}

// With adds route-specific middleware.
func With(mw ...Middleware) RouteOption {
	return func(s *routeConfig) {
		s.mw = append(s.mw, mw...)
	}
}

// routerAdapter records route declarations into the App.
type routerAdapter struct {
	app *App
	mw  []Middleware
}

func (r *routerAdapter) Route(name, uri string, h HandlerFunc, opts ...RouteOption) {
	rc := &routeConfig{}
	for _, opt := range opts {
		opt(rc)
	}

	ropts := []route.Option{route.WithCache(r.app.cache)}
	if len(rc.defaults) > 0 {
		ropts = append(ropts, route.WithDefaults(rc.defaults))
	}
	if len(rc.methods) > 0 {
		ropts = append(ropts, route.WithMethods(rc.methods...))
	}
	if len(rc.filters) > 0 {
		ropts = append(ropts, route.WithFilter(rc.filters...))
	}

	if _, err := r.app.table.Set(name, uri, rc.regex, ropts...); err != nil {
		panic(fmt.Sprintf("waymark: %v", err))
	}
	r.bind(name, h, rc.mw)
}

func (r *routerAdapter) Bind(name string, h HandlerFunc, mw ...Middleware) {
	r.bind(name, h, mw)
}

func (r *routerAdapter) bind(name string, h HandlerFunc, mw []Middleware) {
	all := append(slices.Clone(r.mw), mw...)
	r.app.bindings[name] = chain(h, all...)
}

func (r *routerAdapter) Group(fn func(Router)) {
	fn(&routerAdapter{app: r.app, mw: slices.Clone(r.mw)})
}

func (r *routerAdapter) Use(mw ...Middleware) {
	r.mw = append(r.mw, mw...)
}

func (r *routerAdapter) Mount(pattern string, h http.Handler) {
	r.app.router.Mount(pattern, h)
}

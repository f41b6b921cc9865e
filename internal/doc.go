// Package internal provides the core types and implementation for the waymark framework.
//
// This package is internal and should not be used directly. Import "github.com/dmitrymomot/waymark"
// instead, which re-exports the public API.
//
// # Core Types
//
//   - App: Owns the route tables, the chi mux in front of them, and the server lifecycle
//   - Router: Interface handlers use to declare named routes and bind file routes
//   - Context: Request/response access, matched route parameters and reverse routing
//   - Handler, HandlerFunc, Middleware, ErrorHandler: the handler contract
//
// # Request Flow
//
// The chi mux serves health checks, metrics and mounted handlers. Every
// other path reaches the route tables: routes declared in code are tried
// first, in declaration order, then routes from the routes file. The first
// match wins. Global middleware wraps the resolved handler, so it can read
// c.RouteName():
//
//	request -> http middleware -> chi mux -> route match -> middleware -> handler
//
// A request no route matches goes to the not-found handler. A matched file
// route with no bound handler answers 404 and logs a warning.
//
// # Reverse Routing
//
// Handlers build links by route name rather than by string concatenation:
//
//	func (h *Blog) create(c waymark.Context) error {
//	    post, err := h.repo.Create(c, ...)
//	    if err != nil {
//	        return err
//	    }
//	    return c.RedirectRoute(http.StatusSeeOther, "blog.post", route.Params{
//	        "year": post.Year, "slug": post.Slug,
//	    })
//	}
//
// A missing required parameter surfaces as a *route.MissingParamError and
// is answered with 500 by the default error handler.
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any function
// that expects a standard library context.
package internal

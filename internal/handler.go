package internal

// Handler declares routes on a router.
//
// Example:
//
//	type BlogHandler struct {
//	    repo *repository.Queries
//	}
//
//	func (h *BlogHandler) Routes(r waymark.Router) {
//	    r.Route("blog.post", "blog/<year>/<slug>", h.showPost,
//	        waymark.Regex(map[string]string{"year": `\d{4}`}),
//	        waymark.Methods(http.MethodGet),
//	    )
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// It receives a Context and returns an error.
// Returning a non-nil error triggers the error handler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
//
// Example:
//
//	func Auth(next waymark.HandlerFunc) waymark.HandlerFunc {
//	    return func(c waymark.Context) error {
//	        if !isAuthenticated(c) {
//	            return c.RedirectRoute(http.StatusFound, "login", nil)
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error

// chain applies mw so that mw[0] runs first.
func chain(h HandlerFunc, mw ...Middleware) HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

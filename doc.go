// Package waymark is a small web framework built around named, reversible
// routes.
//
// A route is a URI template such as "blog(/<year>(/<slug>))". It compiles
// into an anchored regular expression for matching incoming paths, and can
// be expanded back into a URI from a parameter map. Routes are tried in
// declaration order; the first match wins.
//
// # Quick Start
//
//	app := waymark.New(
//	    waymark.WithLogger("web"),
//	    waymark.WithHandlers(handlers.NewBlog(repo)),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handlers
//
// Handlers implement the [Handler] interface to declare routes:
//
//	func (h *Blog) Routes(r waymark.Router) {
//	    r.Route("blog.post", "blog/<year>/<slug>", h.showPost,
//	        waymark.Regex(map[string]string{"year": `\d{4}`}),
//	        waymark.Methods(http.MethodGet),
//	    )
//	    r.Route("blog.index", "blog(/<page>)", h.index,
//	        waymark.Defaults(waymark.Params{"page": "1"}),
//	    )
//	}
//
//	func (h *Blog) showPost(c waymark.Context) error {
//	    post, err := h.repo.Find(c, c.Param("year"), c.Param("slug"))
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusOK, post)
//	}
//
// # Reverse Routing
//
// Context.URL and Context.RedirectRoute build links by route name. Optional
// groups whose values equal their defaults are dropped:
//
//	c.URL("blog.index", nil)                            // "/blog"
//	c.URL("blog.index", waymark.Params{"page": "3"})    // "/blog/3"
//
// A required placeholder with no value and no default is an error, never a
// silently shortened URL.
//
// # Routes File
//
// Routes can also live in a YAML file and be reloaded without a restart.
// See package routefile for the format. Handlers attach with Router.Bind.
//
// # Shutdown
//
// The application handles SIGINT/SIGTERM for graceful shutdown.
// Register cleanup functions with ShutdownHook:
//
//	app.Run(":8080",
//	    waymark.ShutdownHook(func(ctx context.Context) error {
//	        return pool.Close()
//	    }),
//	)
package waymark

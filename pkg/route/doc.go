// Package route compiles URI templates into matchers and reverse generators.
//
// A template mixes literal text, <name> placeholders and (...) optional
// groups that may nest:
//
//	blog(/<year>(/<slug>))
//
// # Matching
//
// Compile turns a template into an anchored regular expression with one
// named capture per placeholder. Placeholders match DefaultSegment (no
// slash, dot, comma, semicolon, question mark or newline) unless an
// override is given for that key:
//
//	p := route.MustCompile("blog(/<year>(/<slug>))", map[string]string{"year": `\d{4}`})
//	params, ok := p.Match("/blog/2024/hello") // {"year": "2024", "slug": "hello"}
//
// Paths are trimmed of surrounding slashes and normalised to Unicode NFC
// before matching. A failed match is not an error: callers move on to the
// next route.
//
// # Generation
//
// Generate walks the template in reverse. Placeholders take the supplied
// value, then the default. An optional group is written only when it holds
// a placeholder with no default or with a non-default value, so
//
//	p := route.MustCompile("(<controller>(/<action>(/<id>)))", nil)
//	p.Generate(route.Params{"controller": "welcome", "action": "index"},
//	    route.Params{"action": "edit"}) // "welcome/edit"
//
// A placeholder that cannot be resolved inside an emitted part of the
// template produces a *MissingParamError; it is never dropped silently.
//
// # Routes and tables
//
// Route binds a name, defaults and filters to a compiled pattern. Table
// keeps routes in registration order and returns the first match, which is
// the only tie-break. Tables support reverse routing by name and atomic
// replacement for hot reload:
//
//	t := route.NewTable()
//	t.Set("blog", "blog(/<year>)", nil, route.WithMethods(http.MethodGet))
//	t.Set("default", "(<controller>(/<action>))", nil,
//	    route.WithDefaults(route.Params{"controller": "home", "action": "index"}))
//
//	r, params, ok := t.Match(req)
//	uri, err := t.URI("blog", route.Params{"year": "2024"}) // "blog/2024"
//
// A route whose "host" default names a remote host is external; its URI is
// an absolute URL on that host.
//
// # Caching
//
// Compilation is a pure function of the template and overrides. Cache
// memoises compiled patterns, deduplicating concurrent misses, and every
// Route and Table compiles through a shared default cache unless told
// otherwise.
package route

package route

import (
	"fmt"
	"net/http"
	"sync"
)

// Table is an ordered set of named routes.
// Matching tries routes in registration order and the first match wins.
// A Table is safe for concurrent use.
type Table struct {
	cache  *Cache
	index  map[string]int
	routes []*Route
	mu     sync.RWMutex
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithTableCache makes Set compile through c.
func WithTableCache(c *Cache) TableOption {
	return func(t *Table) {
		if c != nil {
			t.cache = c
		}
	}
}

// NewTable creates an empty route table.
func NewTable(opts ...TableOption) *Table {
	t := &Table{
		cache: defaultCache,
		index: make(map[string]int),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Set compiles and registers a route.
// Reusing a name replaces the earlier route but keeps its priority.
func (t *Table) Set(name, uri string, regex map[string]string, opts ...Option) (*Route, error) {
	opts = append([]Option{WithCache(t.cache)}, opts...)
	r, err := New(name, uri, regex, opts...)
	if err != nil {
		return nil, fmt.Errorf("route %q: %w", name, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.put(r)
	return r, nil
}

// Add registers an already built route. Same replacement rule as Set.
func (t *Table) Add(r *Route) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.put(r)
}

// Replace swaps the table contents for routes in one step.
func (t *Table) Replace(routes []*Route) {
	index := make(map[string]int, len(routes))
	list := make([]*Route, 0, len(routes))
	for _, r := range routes {
		if i, ok := index[r.name]; ok {
			list[i] = r
			continue
		}
		index[r.name] = len(list)
		list = append(list, r)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = list
	t.index = index
}

func (t *Table) put(r *Route) {
	if i, ok := t.index[r.name]; ok {
		t.routes[i] = r
		return
	}
	t.index[r.name] = len(t.routes)
	t.routes = append(t.routes, r)
}

// Get returns the route registered under name.
func (t *Table) Get(name string) (*Route, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}
	return t.routes[i], nil
}

// Name returns the name r is registered under, or "" if r is not in the table.
func (t *Table) Name(r *Route) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if i, ok := t.index[r.name]; ok && t.routes[i] == r {
		return r.name
	}
	return ""
}

// All returns the routes in priority order.
func (t *Table) All() []*Route {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Route(nil), t.routes...)
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}

// Match returns the first route matching req.
func (t *Table) Match(req *http.Request) (*Route, Params, bool) {
	for _, r := range t.All() {
		if params, ok := r.Matches(req); ok {
			return r, params, true
		}
	}
	return nil, nil, false
}

// URI generates the URI of the named route.
func (t *Table) URI(name string, params Params) (string, error) {
	r, err := t.Get(name)
	if err != nil {
		return "", err
	}
	return r.URI(params)
}

// URL generates an absolute URL for the named route; see Route.URL.
func (t *Table) URL(name, base string, params Params) (string, error) {
	r, err := t.Get(name)
	if err != nil {
		return "", err
	}
	return r.URL(base, params)
}

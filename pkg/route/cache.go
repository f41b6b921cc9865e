package route

import (
	"container/list"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache holds compiled patterns keyed by template and overrides.
// Concurrent misses for the same key compile once.
type Cache struct {
	items    map[string]*list.Element
	eviction *list.List
	group    singleflight.Group
	mu       sync.Mutex
	max      int
}

type cacheEntry struct {
	pattern *Pattern
	key     string
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithMaxEntries bounds the cache; the least recently used pattern is evicted first.
// Zero means unlimited.
func WithMaxEntries(n int) CacheOption {
	return func(c *Cache) {
		if n >= 0 {
			c.max = n
		}
	}
}

// NewCache creates an empty pattern cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCache = NewCache()

// Compiled compiles uri through the process-wide cache.
func Compiled(uri string, regex map[string]string) (*Pattern, error) {
	return defaultCache.Compile(uri, regex)
}

// Compile returns the cached pattern for (uri, regex), compiling it on a miss.
// Compile errors are not cached.
func (c *Cache) Compile(uri string, regex map[string]string) (*Pattern, error) {
	key := cacheKey(uri, regex)

	if p, ok := c.get(key); ok {
		return p, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if p, ok := c.get(key); ok {
			return p, nil
		}
		p, err := Compile(uri, regex)
		if err != nil {
			return nil, err
		}
		c.put(key, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Pattern), nil
}

// Len returns the number of cached patterns.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Purge drops every cached pattern.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.eviction.Init()
}

func (c *Cache) get(key string) (*Pattern, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.eviction.MoveToFront(elem)
	return elem.Value.(*cacheEntry).pattern, true
}

func (c *Cache) put(key string, p *Pattern) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheEntry).pattern = p
		c.eviction.MoveToFront(elem)
		return
	}

	c.items[key] = c.eviction.PushFront(&cacheEntry{key: key, pattern: p})

	for c.max > 0 && c.eviction.Len() > c.max {
		oldest := c.eviction.Back()
		c.eviction.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

// cacheKey is stable regardless of map iteration order.
func cacheKey(uri string, regex map[string]string) string {
	if len(regex) == 0 {
		return uri
	}

	names := make([]string, 0, len(regex))
	for k := range regex {
		names = append(names, k)
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString(uri)
	for _, k := range names {
		b.WriteByte(0)
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(regex[k])
	}
	return b.String()
}

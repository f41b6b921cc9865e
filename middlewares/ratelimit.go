package middlewares

import (
	"math"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/waymark/internal"
)

const defaultLimiterTTL = 10 * time.Minute

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Key picks the bucket a request draws from. Defaults to the route name,
	// so every route gets its own limit.
	Key func(c internal.Context) string
	// TTL evicts buckets that were not used for this long.
	TTL time.Duration
}

// RateLimitOption configures RateLimitConfig.
type RateLimitOption func(*RateLimitConfig)

// WithRateLimitKey sets the bucket key, e.g. client IP plus route name.
func WithRateLimitKey(fn func(c internal.Context) string) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if fn != nil {
			cfg.Key = fn
		}
	}
}

// WithRateLimitTTL sets how long an idle bucket is kept.
func WithRateLimitTTL(ttl time.Duration) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if ttl > 0 {
			cfg.TTL = ttl
		}
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	ttl       time.Duration
	buckets   map[string]*bucket
	lastSweep time.Time
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > s.ttl {
		for k, b := range s.buckets {
			if now.Sub(b.lastSeen) > s.ttl {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// RateLimit returns middleware that allows rps requests per second with
// the given burst per bucket. Rejected requests get a Retry-After header
// and a *RateLimitError (429); the handler does not run.
func RateLimit(rps float64, burst int, opts ...RateLimitOption) internal.Middleware {
	cfg := &RateLimitConfig{
		Key: func(c internal.Context) string { return c.RouteName() },
		TTL: defaultLimiterTTL,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	set := &limiterSet{
		rps:       rate.Limit(rps),
		burst:     max(burst, 1),
		ttl:       cfg.TTL,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			now := time.Now()
			res := set.get(cfg.Key(c), now).ReserveN(now, 1)
			if delay := res.DelayFrom(now); delay > 0 {
				res.CancelAt(now)
				if delay != rate.InfDuration {
					c.SetHeader("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				}
				return &RateLimitError{Route: c.RouteName(), RetryAfter: delay}
			}
			return next(c)
		}
	}
}

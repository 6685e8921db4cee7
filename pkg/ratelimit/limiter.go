package ratelimit

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key. Buckets idle for longer than the
// configured TTL are evicted.
type Limiter struct {
	buckets *gocache.Cache
	mu      sync.Mutex
	rate    rate.Limit
	burst   int
	ttl     time.Duration
}

// New creates a limiter allowing perSecond events per key with the given burst.
// A non-positive perSecond disables limiting.
func New(perSecond float64, burst int, idleTTL time.Duration) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}

	return &Limiter{
		buckets: gocache.New(idleTTL, idleTTL),
		rate:    rate.Limit(perSecond),
		burst:   burst,
		ttl:     idleTTL,
	}
}

// Allow reports whether one event for key may happen now.
func (l *Limiter) Allow(key string) bool {
	if l.rate <= 0 {
		return true
	}
	return l.bucket(key).Allow()
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	return l.buckets.ItemCount()
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	if v, ok := l.buckets.Get(key); ok {
		// Refresh the idle deadline.
		l.buckets.Set(key, v, l.ttl)
		return v.(*rate.Limiter)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring the lock
	if v, ok := l.buckets.Get(key); ok {
		return v.(*rate.Limiter)
	}

	lim := rate.NewLimiter(l.rate, l.burst)
	l.buckets.Set(key, lim, l.ttl)
	return lim
}

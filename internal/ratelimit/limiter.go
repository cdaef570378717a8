package ratelimit

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Limiter answers whether one more attempt is allowed for a key, consuming an
// attempt if so. The window is fixed and starts at the first attempt; once it
// expires the counter resets.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is the process-local implementation. It does not survive
// restarts and is not shared across instances; production deployments use the
// redis-backed limiter instead.
type MemoryLimiter struct {
	cache  *gocache.Cache
	limit  int
	window time.Duration
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		cache:  gocache.New(window, 2*window),
		limit:  limit,
		window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	if err := l.cache.Add(key, 1, l.window); err == nil {
		return l.limit >= 1, nil
	}

	n, err := l.cache.IncrementInt(key, 1)
	if err != nil {
		// Entry expired between Add and Increment; start a fresh window.
		l.cache.Set(key, 1, l.window)
		return l.limit >= 1, nil
	}
	return n <= l.limit, nil
}

package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SourceLimiter enforces a minimum delay between detail-page requests to the
// same source. Different sources never block each other.
type SourceLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter // key: source name
	minDelay time.Duration
}

// NewSourceLimiter creates a limiter allowing one request per minDelay per source.
// A non-positive minDelay disables waiting.
func NewSourceLimiter(minDelay time.Duration) *SourceLimiter {
	return &SourceLimiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

func (l *SourceLimiter) limiterFor(source string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[source]; ok {
		return lim
	}
	// Burst of one: the first request passes, later ones are spaced by minDelay.
	lim := rate.NewLimiter(rate.Every(l.minDelay), 1)
	l.limiters[source] = lim
	return lim
}

// Wait blocks until a request to source is allowed.
// Returns an error if the context is cancelled while waiting.
func (l *SourceLimiter) Wait(ctx context.Context, source string) error {
	if l.minDelay <= 0 {
		return nil
	}
	if err := l.limiterFor(source).Wait(ctx); err != nil {
		return fmt.Errorf("politeness wait for %s: %w", source, err)
	}
	return nil
}

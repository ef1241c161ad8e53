// Package ratelimit spaces out searches that hit the same backend.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/jobhunter/internal/model"
)

// BackendLimiter enforces a minimum delay between requests to the same
// backend. Requests to different backends do not block each other.
type BackendLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	minDelay time.Duration
}

// NewBackendLimiter creates a limiter allowing one request per minDelay per
// backend.
func NewBackendLimiter(minDelay time.Duration) *BackendLimiter {
	return &BackendLimiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

func (l *BackendLimiter) limiter(backend string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[backend]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.minDelay), 1)
		l.limiters[backend] = lim
	}
	return lim
}

// Wait blocks until a request to backend is allowed or ctx is done.
func (l *BackendLimiter) Wait(ctx context.Context, backend string) error {
	if l.minDelay <= 0 {
		return nil
	}
	if err := l.limiter(backend).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", backend, err)
	}
	return nil
}

// Searcher waits on a shared BackendLimiter before each search.
type Searcher struct {
	inner   model.JobSearcher
	limiter *BackendLimiter
	backend string
}

// NewSearcher wraps inner. Searchers targeting the same backend should share
// one limiter.
func NewSearcher(inner model.JobSearcher, limiter *BackendLimiter, backend string) *Searcher {
	return &Searcher{inner: inner, limiter: limiter, backend: backend}
}

// Search waits for the limiter, then delegates.
func (s *Searcher) Search(ctx context.Context, c model.SearchCriteria) ([]model.Job, error) {
	if err := s.limiter.Wait(ctx, s.backend); err != nil {
		return nil, err
	}
	return s.inner.Search(ctx, c)
}

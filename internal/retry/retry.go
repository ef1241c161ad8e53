// Package retry wraps a job searcher with backoff on transient failures.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/amishk599/jobhunter/internal/model"
)

// jitterFraction is the ± share of each backoff delay that is randomised.
const jitterFraction = 0.3

// Searcher retries a model.JobSearcher with exponential backoff and jitter.
type Searcher struct {
	inner      model.JobSearcher
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewSearcher wraps inner. maxRetries is the number of attempts after the
// first failure; baseDelay doubles on each retry.
func NewSearcher(inner model.JobSearcher, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Searcher {
	return &Searcher{inner: inner, maxRetries: maxRetries, baseDelay: baseDelay, logger: logger}
}

// Search runs the wrapped search, retrying transient errors.
func (s *Searcher) Search(ctx context.Context, c model.SearchCriteria) ([]model.Job, error) {
	var err error
	for attempt := 0; ; attempt++ {
		var jobs []model.Job
		jobs, err = s.inner.Search(ctx, c)
		if err == nil {
			return jobs, nil
		}
		if attempt >= s.maxRetries || !Retryable(err) {
			break
		}

		delay := s.delay(attempt+1, err)
		s.logger.Warn("search failed, retrying",
			"keywords", c.Keywords,
			"attempt", attempt+1,
			"max_retries", s.maxRetries,
			"delay", delay,
			"error", err,
		)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-t.C:
		}
	}
	return nil, err
}

// delay returns the wait before retry number attempt (1-based). A server
// Retry-After hint wins over the computed backoff.
func (s *Searcher) delay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}
	d := s.baseDelay << (attempt - 1)
	jitter := (rand.Float64()*2 - 1) * jitterFraction * float64(d)
	return d + time.Duration(jitter)
}

// Retryable reports whether err is worth another attempt: network errors,
// 429 and 5xx are; cancellation, a missing session and other 4xx are not.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, model.ErrNotAuthenticated):
		return false
	}
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return true
}

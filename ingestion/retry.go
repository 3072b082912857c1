package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/tipindex/core"
)

// ErrInvalidMaxAttempts is returned when a retrying source allows no attempts.
var ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

// RetrySource retries a failing Fetch with exponential backoff.
// Malformed documents are not retried.
type RetrySource struct {
	src         Source
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// NewRetrySource wraps src. baseDelay doubles after every failed attempt.
func NewRetrySource(src Source, maxAttempts int, baseDelay time.Duration) (*RetrySource, error) {
	if src == nil {
		return nil, ErrSourceRequired
	}
	if maxAttempts <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	return &RetrySource{
		src:         src,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      slog.Default(),
	}, nil
}

// Fetch calls the wrapped source until it succeeds, fails permanently,
// runs out of attempts or ctx is done.
func (s *RetrySource) Fetch(ctx context.Context) ([]core.RawTip, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		// Check context before attempting
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raws, err := s.src.Fetch(ctx)
		if err == nil {
			if attempt > 1 {
				s.logger.Debug("fetch succeeded after retry", "attempt", attempt)
			}
			return raws, nil
		}
		if permanent(err) {
			return nil, err
		}
		lastErr = err

		s.logger.Debug("fetch failed, will retry", "attempt", attempt, "maxAttempts", s.maxAttempts, "err", err)

		// Don't sleep after the last attempt
		if attempt == s.maxAttempts {
			break
		}

		// baseDelay * 2^(attempt-1)
		delay := s.baseDelay << (attempt - 1)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func permanent(err error) bool {
	return errors.Is(err, ErrInvalidDocument) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

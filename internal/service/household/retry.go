package household

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"rsvp-households/internal/domain"
	householdrepo "rsvp-households/internal/repository/household"
)

// ErrRowsNotAccepted is the cause recorded when a store keeps refusing part
// of a batch until the retry policy gives up.
var ErrRowsNotAccepted = errors.New("store did not accept every row")

// RetryPolicy bounds the retry loop for unaccepted rows and transient store
// failures. Attempts and total elapsed time are both capped.
type RetryPolicy struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	MaxElapsed    time.Duration
	BackoffFactor float64
	Jitter        bool
}

// DefaultRetryPolicy is used when no policy is configured.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:   5,
	InitialDelay:  50 * time.Millisecond,
	MaxDelay:      2 * time.Second,
	MaxElapsed:    10 * time.Second,
	BackoffFactor: 2.0,
	Jitter:        true,
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BackoffFactor < 1 {
		p.BackoffFactor = DefaultRetryPolicy.BackoffFactor
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultRetryPolicy.MaxDelay
	}
	return p
}

// backoff returns the wait before retry number attempt (1-based).
func (p RetryPolicy) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(p.InitialDelay) * math.Pow(p.BackoffFactor, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	if p.Jitter {
		delay *= 0.8 + rand.Float64()*0.4
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// retryBatch submits items through call until every item is accepted, a
// non-transient error occurs, or the policy is exhausted.
func retryBatch[T any](ctx context.Context, s *Service, op, householdID string, items []T, call func(context.Context, []T) ([]T, error)) error {
	pending := items
	start := time.Now()
	var lastErr error

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.ContextError(err)
		}

		unaccepted, err := call(ctx, pending)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.ContextError(ctxErr)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return domain.ContextError(err)
			}
			if !errors.Is(err, householdrepo.ErrTransient) {
				return &domain.StoreError{Op: op, Pending: len(pending), Err: err}
			}
			lastErr = err
		case len(unaccepted) == 0:
			return nil
		default:
			pending = unaccepted
			lastErr = ErrRowsNotAccepted
		}

		if attempt >= s.retry.MaxAttempts {
			return &domain.StoreError{Op: op, Pending: len(pending), Err: fmt.Errorf("gave up after %d attempts: %w", attempt, lastErr)}
		}
		delay := s.retry.backoff(attempt)
		if s.retry.MaxElapsed > 0 && time.Since(start)+delay > s.retry.MaxElapsed {
			return &domain.StoreError{Op: op, Pending: len(pending), Err: fmt.Errorf("retry budget %s exhausted: %w", s.retry.MaxElapsed, lastErr)}
		}

		s.logger.Warn().
			Err(lastErr).
			Str("op", op).
			Str("household_id", householdID).
			Int("attempt", attempt).
			Int("pending", len(pending)).
			Dur("backoff", delay).
			Msg("retrying batch")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return domain.ContextError(ctx.Err())
		}
	}
}

func chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var out [][]T
	for len(items) > 0 {
		n := min(size, len(items))
		out = append(out, items[:n:n])
		items = items[n:]
	}
	return out
}

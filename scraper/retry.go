package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// retrier reruns transient failures with exponential backoff. Challenge and
// session-start errors are surfaced immediately: retrying into an active
// defense only makes the defense stickier.
type retrier struct {
	maxAttempts int
	baseDelay   time.Duration
}

func (r retrier) do(ctx context.Context, name string, fn func() error) error {
	var lastErr error
	delay := r.baseDelay

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt < r.maxAttempts {
			log.Printf("%s failed (attempt %d/%d): %v, retrying in %v",
				name, attempt, r.maxAttempts, lastErr, delay)
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}
			delay *= 2
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, r.maxAttempts, lastErr)
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, ErrChallengePresented),
		errors.Is(err, ErrUnresolvableChallenge),
		errors.Is(err, ErrSessionStart),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

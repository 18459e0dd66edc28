package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/noticegest/internal/backend"
)

const MaxRetries = 3

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *backend.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := min(time.Duration(1<<uint(attempt))*time.Second, 30*time.Second)
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// retry calls fn up to MaxRetries times while it fails with a retryable
// error, sleeping backoff(attempt) in between.
func retry[T any](ctx context.Context, log *slog.Logger, backoff func(int) time.Duration, what string, fn func() (T, error)) (T, error) {
	var (
		out T
		err error
	)
	for attempt := range MaxRetries {
		out, err = fn()
		if err == nil || !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable backend error", "op", what, "attempt", attempt, "error", err)
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return out, ctx.Err()
		}
	}
	return out, err
}

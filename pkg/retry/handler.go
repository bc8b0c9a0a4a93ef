package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rohmanhakim/cricket-api/pkg/failure"
	"github.com/rohmanhakim/cricket-api/pkg/timeutil"
)

// Retry executes the provided function with retry logic.
// It will retry the function up to MaxAttempts times, applying exponential
// backoff with jitter between attempts. Only retryable errors will trigger
// a retry; a non-retryable error is returned to the caller unchanged.
//
// Type parameter T represents the return type of the function being retried.
func Retry[T any](
	ctx context.Context,
	retryParam RetryParam,
	fn func(context.Context) (T, failure.ClassifiedError),
) (T, failure.ClassifiedError) {
	var lastErr failure.ClassifiedError
	var zero T

	if retryParam.MaxAttempts < 1 {
		return zero, &RetryError{
			Message:   "max attempt cannot be 0",
			Cause:     ErrZeroAttempt,
			Retryable: true,
		}
	}

	rng := rand.New(rand.NewSource(retryParam.RandomSeed))

	for attempt := 1; attempt <= retryParam.MaxAttempts; attempt++ {
		result, err := fn(ctx)

		if err == nil {
			return result, nil
		}

		lastErr = err

		if !isErrorRetryable(err) {
			return zero, err
		}

		if attempt == retryParam.MaxAttempts {
			break
		}

		backoffDelay := timeutil.ExponentialBackoffDelay(
			attempt,
			retryParam.Jitter,
			rng,
			retryParam.BackoffParam,
		)

		select {
		case <-ctx.Done():
			return zero, &RetryError{
				Message:   fmt.Sprintf("aborted after %d attempts: %v", attempt, ctx.Err()),
				Cause:     ErrAborted,
				Retryable: false,
				Last:      lastErr,
			}
		case <-time.After(backoffDelay):
		}
	}

	return zero, &RetryError{
		Message:   fmt.Sprintf("exhausted %d attempts. Last error: %v", retryParam.MaxAttempts, lastErr),
		Cause:     ErrExhaustedAttempts,
		Retryable: true,
		Last:      lastErr,
	}
}

// isErrorRetryable checks if an error should be retried.
// Errors that do not advertise retryability default to retryable.
func isErrorRetryable(err failure.ClassifiedError) bool {
	type hasRetryable interface {
		IsRetryable() bool
	}

	if r, ok := err.(hasRetryable); ok {
		return r.IsRetryable()
	}

	return true
}

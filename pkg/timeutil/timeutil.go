package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// MaxDuration returns the largest duration in the slice, or zero for an
// empty slice.
func MaxDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	max := durations[0]
	for _, d := range durations[1:] {
		if d > max {
			max = d
		}
	}
	return max
}

// ExponentialBackoffDelay computes the delay to apply before the next
// attempt. The first retry (attempt=1) waits InitialDuration; each further
// attempt multiplies the delay, capped at MaxDuration. A pseudo-random
// jitter in [0, jitter) is added on top so concurrent callers do not
// synchronize their retries.
//
// Properties:
//   - Pure given the same rng state
//   - Monotonically non-decreasing in attempt (ignoring jitter)
func ExponentialBackoffDelay(
	attempt int,
	jitter time.Duration,
	rng *rand.Rand,
	param BackoffParam,
) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	exponent := float64(attempt - 1)
	delay := float64(param.InitialDuration()) * math.Pow(param.Multiplier(), exponent)
	if delay > float64(param.MaxDuration()) {
		delay = float64(param.MaxDuration())
	}

	if jitter > 0 && rng != nil {
		delay += float64(rng.Int63n(int64(jitter)))
	}

	return time.Duration(delay)
}

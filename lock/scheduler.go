package lock

import (
	"math/rand/v2"
	"time"
)

// RetryScheduler spaces acquisition attempts. Each delay is drawn uniformly
// from [0, ttl/retryCount), so the total wait stays below the TTL whatever the
// retry count, and competing callers do not retry in lockstep.
type RetryScheduler struct {
	attempts int
	maxDelay time.Duration
}

// NewRetryScheduler returns the schedule for a lock with the given TTL and
// attempt budget. A retry count below one is treated as one.
func NewRetryScheduler(ttl time.Duration, retryCount int) RetryScheduler {
	if retryCount < 1 {
		retryCount = 1
	}
	var maxDelay time.Duration
	if ttl > 0 {
		maxDelay = ttl / time.Duration(retryCount)
	}
	return RetryScheduler{attempts: retryCount, maxDelay: maxDelay}
}

// Attempts returns the total number of attempts.
func (s RetryScheduler) Attempts() int { return s.attempts }

// MaxDelay returns the exclusive upper bound of Delay.
func (s RetryScheduler) MaxDelay() time.Duration { return s.maxDelay }

// Delay samples one inter-attempt delay.
func (s RetryScheduler) Delay() time.Duration {
	if s.maxDelay <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(s.maxDelay)))
}

// Backoff samples the delays between consecutive attempts. There is one
// fewer delay than attempts; nothing waits after the last attempt.
func (s RetryScheduler) Backoff() []time.Duration {
	out := make([]time.Duration, s.attempts-1)
	for i := range out {
		out[i] = s.Delay()
	}
	return out
}

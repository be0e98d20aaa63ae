package auto

import "time"

// Clock abstracts time so delays and backoff are testable without sleeping.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func RealClock() Clock { return realClock{} }

// RetryPolicy is an explicit bounded retry schedule. Attempt n waits
// Backoff[n] before firing again; the schedule never loops.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     []time.Duration
}

// Delay returns the wait before the given zero-based attempt. Past the end of
// the schedule the last entry holds.
func (r RetryPolicy) Delay(attempt int) time.Duration {
	if len(r.Backoff) == 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(r.Backoff) {
		attempt = len(r.Backoff) - 1
	}
	return r.Backoff[attempt]
}

// DefaultRescueRetry is the mortgage-rescue schedule: three attempts with
// escalating backoff, then the engine reports itself stuck for that debt
// episode and waits for the human.
func DefaultRescueRetry() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     []time.Duration{500 * time.Millisecond, 1000 * time.Millisecond, 1500 * time.Millisecond},
	}
}

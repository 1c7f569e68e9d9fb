package utils

import (
	"math/rand"
	"time"
)

// Retrier retries an action with exponential backoff and jitter, but only for
// errors its predicate classifies as retryable. Not safe for concurrent use;
// build one per call site.
type Retrier[T any] struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	jitter       float64
	isRetryable  func(error) bool

	rnd *rand.Rand
}

func NewRetrier[T any](maxAttempts int, initialDelay, maxDelay time.Duration, isRetryable func(error) bool) *Retrier[T] {
	return &Retrier[T]{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		jitter:       0.1,
		isRetryable:  isRetryable,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewDefaultRetrier retries every error up to three times.
func NewDefaultRetrier[T any]() *Retrier[T] {
	return NewRetrier[T](3, 50*time.Millisecond, 2*time.Second, func(error) bool { return true })
}

// DoWithReturn runs action until it succeeds, fails with a non-retryable
// error, or exhausts the attempt budget. The last error is returned as-is.
func (r *Retrier[T]) DoWithReturn(action func() (T, error)) (T, error) {
	var zero T
	delay := r.initialDelay
	for attempt := 1; ; attempt++ {
		result, err := action()
		if err == nil {
			return result, nil
		}
		if attempt >= r.maxAttempts || !r.isRetryable(err) {
			return zero, err
		}
		time.Sleep(r.withJitter(delay))
		delay *= 2
		if delay > r.maxDelay {
			delay = r.maxDelay
		}
	}
}

func (r *Retrier[T]) withJitter(d time.Duration) time.Duration {
	maxJitterMillis := int64(float64(d.Milliseconds()) * r.jitter)
	if maxJitterMillis <= 0 {
		return d
	}
	jitterMillis := r.rnd.Int63n(maxJitterMillis) - maxJitterMillis/2
	return d + time.Duration(jitterMillis)*time.Millisecond
}

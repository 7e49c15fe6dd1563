package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// LogFunc is invoked after each failed attempt with the delay before the next one.
type LogFunc func(attempt int, err error, nextDelay time.Duration)

// Config holds retry configuration
type Config struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	JitterFraction  float64
	MaxTotalTimeout time.Duration
}

// DefaultConfig returns the backoff used for infrastructure bootstrap:
// capped exponential with light jitter, bounded to 45 seconds overall.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     8,
		InitialDelay:    200 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		BackoffFactor:   2.0,
		JitterFraction:  0.2,
		MaxTotalTimeout: 45 * time.Second,
	}
}

// Do runs fn until it succeeds, attempts are exhausted, or ctx is done.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	return DoWithLog(ctx, cfg, "retry", fn, nil)
}

// DoWithLog is Do with a per-attempt callback, used to log connection attempts.
func DoWithLog(ctx context.Context, cfg Config, name string, fn func() error, logFn LogFunc) error {
	if cfg.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxTotalTimeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return abortErr(name, attempt-1, err, lastErr)
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.delayFor(attempt)
		if logFn != nil {
			logFn(attempt, lastErr, delay)
		}

		select {
		case <-ctx.Done():
			return abortErr(name, attempt, ctx.Err(), lastErr)
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%s: giving up after %d attempts: %w", name, cfg.MaxAttempts, lastErr)
}

// delayFor computes the backoff before attempt+1, with jitter so a fleet of
// instances does not reconnect in lockstep.
func (c Config) delayFor(attempt int) time.Duration {
	delay := float64(c.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= c.BackoffFactor
		if delay >= float64(c.MaxDelay) {
			delay = float64(c.MaxDelay)
			break
		}
	}
	if c.JitterFraction > 0 {
		delay += delay * c.JitterFraction * (rand.Float64()*2 - 1)
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

func abortErr(name string, attempts int, cause, lastErr error) error {
	if lastErr != nil {
		return fmt.Errorf("%s: aborted after %d attempts: %w (last error: %v)", name, attempts, cause, lastErr)
	}
	return fmt.Errorf("%s: aborted: %w", name, cause)
}

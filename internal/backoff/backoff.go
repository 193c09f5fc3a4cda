// Package backoff retries transient bridge failures with exponential delay.
//
// The bridge never retries on its own; callers wrap Update with Run and
// decide which errors are transient.
package backoff

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Config contains configuration for exponential backoff.
type Config struct {
	MaxRetries    int           // Maximum consecutive retries (default: 5)
	RetryDelay    time.Duration // Initial retry delay (default: 50ms)
	MaxRetryDelay time.Duration // Maximum retry delay cap (default: 2s)
}

// DefaultConfig returns defaults sized for an engine cycle of tens of
// milliseconds.
func DefaultConfig() Config {
	return Config{
		MaxRetries:    5,
		RetryDelay:    50 * time.Millisecond,
		MaxRetryDelay: 2 * time.Second,
	}
}

// State tracks consecutive failures across Run calls.
type State struct {
	CurrentRetries int
	Retries        atomic.Uint32 // total retries, readable from any goroutine
}

// Reset clears the consecutive failure count.
func (s *State) Reset() {
	s.CurrentRetries = 0
}

// StepFunc is one attempt, typically a single bridge Update.
type StepFunc func(ctx context.Context) error

// Run executes step until it succeeds, fails with an error retryable does
// not accept, or MaxRetries consecutive retries are exhausted.
//
// Schedule with RetryDelay=50ms, MaxRetryDelay=2s:
//   - Retry 1: 50ms
//   - Retry 2: 100ms
//   - Retry 3: 200ms
//   - Retry 4: 400ms
//   - Retry 5: 800ms
//
// A non-retryable error is returned unwrapped. Exhaustion wraps the last
// error.
func Run(ctx context.Context, step StepFunc, retryable func(error) bool, cfg Config, state *State) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := step(ctx)
		if err == nil {
			state.Reset()
			return nil
		}
		if !retryable(err) {
			return err
		}

		state.CurrentRetries++
		state.Retries.Add(1)
		if state.CurrentRetries > cfg.MaxRetries {
			return fmt.Errorf("backoff: max retries exceeded (%d attempts): %w", cfg.MaxRetries, err)
		}

		delay := Delay(state.CurrentRetries, cfg)
		slog.Warn("sensor-bridge: retrying after transient error",
			"attempt", state.CurrentRetries,
			"max_retries", cfg.MaxRetries,
			"delay", delay,
			"error", err,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Delay returns RetryDelay * 2^(attempt-1), capped at MaxRetryDelay.
func Delay(attempt int, cfg Config) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 30 {
		return cfg.MaxRetryDelay
	}
	delay := cfg.RetryDelay * time.Duration(1<<uint(attempt-1))
	if delay > cfg.MaxRetryDelay {
		delay = cfg.MaxRetryDelay
	}
	return delay
}

/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"
)

// ErrTimeout is returned when a bounded wait gives up.
var ErrTimeout = errors.New("timeout")

// Config configures fixed-interval polling.
type Config struct {
	// Interval is the delay between two checks (default: 1s)
	Interval time.Duration
	// MaxWait bounds the total time spent waiting (default: 10m).
	// 0 means wait until the context is done.
	MaxWait time.Duration
}

// Validate checks that the poll configuration has valid values.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.MaxWait < 0 {
		return errors.New("max wait cannot be negative")
	}
	return nil
}

// DefaultConfig returns the polling configuration used for retrieval index readiness.
func DefaultConfig() Config {
	return Config{
		Interval: 1 * time.Second,
		MaxWait:  10 * time.Minute,
	}
}

// Until calls fn until done reports true for its result, sleeping cfg.Interval
// between calls. Errors from fn are returned immediately without another attempt.
// When cfg.MaxWait elapses first, the last result is returned with an error wrapping ErrTimeout.
func Until[T any](ctx context.Context, cfg Config, operation string, done func(T) bool, fn func(context.Context) (T, error)) (T, error) {
	var deadline <-chan time.Time
	if cfg.MaxWait > 0 {
		timer := time.NewTimer(cfg.MaxWait)
		defer timer.Stop()
		deadline = timer.C
	}

	for attempt := 1; ; attempt++ {
		result, err := fn(ctx)
		if err != nil {
			return result, err
		}
		if done(result) {
			return result, nil
		}

		clog.FromContext(ctx).With("operation", operation).
			With("attempt", attempt).
			With("interval", cfg.Interval).
			Debug("Not ready, polling again")

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-deadline:
			return result, fmt.Errorf("%s: %w after %s (%d attempts)", operation, ErrTimeout, cfg.MaxWait, attempt)
		case <-time.After(cfg.Interval):
		}
	}
}

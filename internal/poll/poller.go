// Package poll provides a bounded polling primitive: repeatedly fetch a
// batch of events and return the first one matching a predicate, giving up
// after a cumulative timeout.
package poll

import (
	"context"
	"log/slog"
	"time"
)

// Default polling bounds, applied when the corresponding Config field is zero.
const (
	DefaultInterval = 5 * time.Second
	DefaultTimeout  = 300 * time.Second
)

// FetchFunc retrieves the current batch of events from an external source.
type FetchFunc[E any] func(ctx context.Context) ([]E, error)

// MatchFunc reports whether an event satisfies the caller's predicate.
type MatchFunc[E any] func(event E) bool

// Config bounds a WaitFor call.
type Config struct {
	// Interval is the sleep between fetch attempts.
	Interval time.Duration

	// Timeout is the cumulative elapsed time after which WaitFor gives up.
	Timeout time.Duration

	// Logger receives transient fetch failures. Defaults to slog.Default().
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// WaitFor repeatedly calls fetch and scans each batch in order for the first
// event satisfying match. Between attempts it sleeps cfg.Interval; once the
// cumulative elapsed time exceeds cfg.Timeout it gives up and returns
// ok=false. Absence of a match is not an error.
//
// A transient fetch failure does not abort the wait: it is logged and
// treated as an empty batch for that tick, so an isolated provider hiccup
// cannot prematurely fail the caller's flow.
//
// Context cancellation ends the wait immediately and is the only error case.
func WaitFor[E any](ctx context.Context, cfg Config, fetch FetchFunc[E], match MatchFunc[E]) (E, bool, error) {
	cfg = cfg.withDefaults()

	var zero E
	deadline := time.Now().Add(cfg.Timeout)

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return zero, false, err
		}

		events, err := fetch(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, false, ctxErr
			}
			cfg.Logger.Warn("transient fetch failure during poll, retrying",
				"error", err,
				"interval", cfg.Interval)
			events = nil
		}

		for _, event := range events {
			if match(event) {
				return event, true, nil
			}
		}

		// The last sleep is capped at the remaining time so the call
		// returns at the deadline even when the timeout is not a multiple
		// of the interval.
		sleep := cfg.Interval
		if remaining := time.Until(deadline); remaining < sleep {
			sleep = remaining
		}

		select {
		case <-ctx.Done():
			return zero, false, ctx.Err()
		case <-time.After(sleep):
		}
	}

	return zero, false, nil
}

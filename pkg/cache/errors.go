package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnreachable marks a remote cache backend that could not be contacted.
var ErrUnreachable = errors.New("cache backend unreachable")

// Backoff controls how often a remote backend's connection check is retried
// before startup gives up.
type Backoff struct {
	// Attempts is the total number of tries; values below 1 mean one.
	Attempts int `toml:"attempts"`
	// Delay is the wait before the second try, doubled after each failure.
	Delay time.Duration `toml:"delay"`
}

// DefaultBackoff is used when a RedisConfig leaves Backoff zero.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Retry calls fn until it succeeds, the attempts run out, or ctx ends.
// Only errors wrapping ErrUnreachable are retried.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !errors.Is(err, ErrUnreachable) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}

package store

import (
	"context"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"trade-journal/internal/errors"
)

// retryConfig holds the backoff used for writes that hit a locked database.
type retryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// retry runs fn until it succeeds, returns an error retryable rejects, or
// the attempts are used up. The last error is returned.
func retry(ctx context.Context, cfg retryConfig, retryable func(error) bool, fn func() error) error {
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt < max(cfg.MaxAttempts, 1); attempt++ {
		lastErr = fn()
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}

		// Don't sleep after the last attempt
		if attempt == cfg.MaxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(time.Duration(float64(delay)*cfg.BackoffFactor), cfg.MaxDelay)
	}

	return lastErr
}

// isBusy reports whether err comes from another connection holding the lock.
// Store errors carry the driver message as text, so both forms are checked.
func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

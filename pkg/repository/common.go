package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

// criticalError wraps an error to signal repeater to stop retrying
type criticalError struct {
	err error
}

func (e *criticalError) Error() string {
	return e.err.Error()
}

func (e *criticalError) Unwrap() error { return e.err }

// Is makes any criticalError match the terminal error passed to repeater
func (e *criticalError) Is(target error) bool {
	_, ok := target.(*criticalError)
	return ok
}

// isLockError checks if an error is a SQLite lock/busy error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}

// withRetry runs a write, retrying only on sqlite lock errors
func withRetry(ctx context.Context, fn func() error) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err := retrier.Do(ctx, func() error {
		if err := fn(); err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: err}
		}
		return nil
	}, &criticalError{})

	var ce *criticalError
	if errors.As(err, &ce) {
		return ce.err
	}
	return err
}

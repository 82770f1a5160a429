package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// LockRepository implements named locks with hard expiry
type LockRepository struct {
	db *sqlx.DB
}

// NewLockRepository creates a lock repository
func NewLockRepository(db *sqlx.DB) *LockRepository {
	return &LockRepository{db: db}
}

// Acquire takes the lock if it is free or expired at now. The check and the write are
// a single upsert, so two callers can't both get true.
func (r *LockRepository) Acquire(ctx context.Context, name string, now time.Time, ttl time.Duration) (bool, error) {
	query := `
		INSERT INTO locks (name, expires_at) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET expires_at = excluded.expires_at
		WHERE locks.expires_at <= ?
	`
	var affected int64
	err := withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, query, name, now.Add(ttl).UnixNano(), now.UnixNano())
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	return affected > 0, nil
}

// Release frees the lock taken by Acquire with the given expiry. A lock which expired and
// was taken over by another holder has a different expiry and is left in place, in this
// case released is false.
func (r *LockRepository) Release(ctx context.Context, name string, expires time.Time) (released bool, err error) {
	var affected int64
	err = withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, "DELETE FROM locks WHERE name = ? AND expires_at = ?", name, expires.UnixNano())
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("release lock %s: %w", name, err)
	}
	return affected > 0, nil
}

// ForceRelease removes the lock regardless of its holder
func (r *LockRepository) ForceRelease(ctx context.Context, name string) error {
	err := withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, "DELETE FROM locks WHERE name = ?", name)
		return err
	})
	if err != nil {
		return fmt.Errorf("force release lock %s: %w", name, err)
	}
	return nil
}

// Status reports whether the lock is held at now and when it expires
func (r *LockRepository) Status(ctx context.Context, name string, now time.Time) (held bool, expires time.Time, err error) {
	var expiresAt int64
	err = r.db.GetContext(ctx, &expiresAt, "SELECT expires_at FROM locks WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, time.Time{}, nil
	}
	if err != nil {
		return false, time.Time{}, fmt.Errorf("get lock %s: %w", name, err)
	}
	expires = time.Unix(0, expiresAt)
	return expires.After(now), expires, nil
}

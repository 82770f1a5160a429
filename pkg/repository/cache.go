package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// CacheRepository is a small expiring key/value cache
type CacheRepository struct {
	db *sqlx.DB
}

// NewCacheRepository creates a cache repository
func NewCacheRepository(db *sqlx.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// GetCache returns a value which is still valid at now
func (r *CacheRepository) GetCache(ctx context.Context, key string, now time.Time) (string, bool, error) {
	var value string
	err := r.db.GetContext(ctx, &value, "SELECT value FROM cache WHERE key = ? AND expires_at > ?", key, now.UnixNano())
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cache: %w", err)
	}
	return value, true, nil
}

// SetCache stores a value until expires
func (r *CacheRepository) SetCache(ctx context.Context, key, value string, expires time.Time) error {
	query := `
		INSERT INTO cache (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`
	err := withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, query, key, value, expires.UnixNano())
		return err
	})
	if err != nil {
		return fmt.Errorf("set cache: %w", err)
	}
	return nil
}

// DeleteExpired removes entries expired at now
func (r *CacheRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cache WHERE expires_at <= ?", now.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("delete expired cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

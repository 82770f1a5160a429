package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// LedgerRepository keeps processed article URLs per feed configuration
type LedgerRepository struct {
	db         *sqlx.DB
	maxPerFeed int
}

// NewLedgerRepository creates a ledger, maxPerFeed <= 0 keeps every URL
func NewLedgerRepository(db *sqlx.DB, maxPerFeed int) *LedgerRepository {
	return &LedgerRepository{db: db, maxPerFeed: maxPerFeed}
}

// IsProcessed checks if url was already processed for the feed
func (r *LedgerRepository) IsProcessed(ctx context.Context, feedID int64, url string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM processed_urls WHERE feed_id = ? AND url = ?", feedID, url)
	if err != nil {
		return false, fmt.Errorf("check processed url: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed adds url to the feed's ledger and drops the oldest entries past the cap
func (r *LedgerRepository) MarkProcessed(ctx context.Context, feedID int64, url string) error {
	err := withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, "INSERT OR IGNORE INTO processed_urls (feed_id, url) VALUES (?, ?)", feedID, url)
		return err
	})
	if err != nil {
		return fmt.Errorf("mark processed url: %w", err)
	}

	if r.maxPerFeed <= 0 {
		return nil
	}
	query := `
		DELETE FROM processed_urls WHERE feed_id = ? AND id NOT IN (
			SELECT id FROM processed_urls WHERE feed_id = ? ORDER BY id DESC LIMIT ?
		)
	`
	err = withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, query, feedID, feedID, r.maxPerFeed)
		return err
	})
	if err != nil {
		return fmt.Errorf("prune processed urls: %w", err)
	}
	return nil
}

// CountProcessed returns number of URLs recorded for the feed
func (r *LedgerRepository) CountProcessed(ctx context.Context, feedID int64) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM processed_urls WHERE feed_id = ?", feedID); err != nil {
		return 0, fmt.Errorf("count processed urls: %w", err)
	}
	return n, nil
}

// ClearProcessed forgets all URLs of the feed
func (r *LedgerRepository) ClearProcessed(ctx context.Context, feedID int64) error {
	err := withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, "DELETE FROM processed_urls WHERE feed_id = ?", feedID)
		return err
	})
	if err != nil {
		return fmt.Errorf("clear processed urls: %w", err)
	}
	return nil
}

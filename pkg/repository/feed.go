package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/feedrewriter/pkg/domain"
)

// FeedRepository handles feed configurations
type FeedRepository struct {
	db *sqlx.DB
}

// feedSQL represents a feed for SQL operations
type feedSQL struct {
	ID          int64      `db:"id"`
	Position    int        `db:"position"`
	URL         string     `db:"url"`
	Category    string     `db:"category"`
	IntervalSec int64      `db:"interval_sec"`
	Prompt      string     `db:"prompt"`
	LastRun     *time.Time `db:"last_run"`
}

const feedColumns = "id, position, url, category, interval_sec, prompt, last_run"

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *sqlx.DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// CreateFeed inserts a new feed, zero position means "append to the end"
func (r *FeedRepository) CreateFeed(ctx context.Context, feed *domain.FeedConfig) error {
	if feed.Position == 0 {
		var maxPos int
		if err := r.db.GetContext(ctx, &maxPos, "SELECT COALESCE(MAX(position), 0) FROM feeds"); err != nil {
			return fmt.Errorf("get max position: %w", err)
		}
		feed.Position = maxPos + 1
	}

	row := feedSQL{
		Position:    feed.Position,
		URL:         feed.URL,
		Category:    feed.Category,
		IntervalSec: int64(feed.Interval / time.Second),
		Prompt:      feed.Prompt,
	}
	query := `
		INSERT INTO feeds (position, url, category, interval_sec, prompt)
		VALUES (:position, :url, :category, :interval_sec, :prompt)
	`
	var id int64
	err := withRetry(ctx, func() error {
		res, err := r.db.NamedExecContext(ctx, query, row)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return fmt.Errorf("create feed: %w", err)
	}
	feed.ID = id
	return nil
}

// GetFeed retrieves a feed by ID
func (r *FeedRepository) GetFeed(ctx context.Context, id int64) (*domain.FeedConfig, error) {
	var row feedSQL
	if err := r.db.GetContext(ctx, &row, "SELECT "+feedColumns+" FROM feeds WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("get feed %d: %w", id, err)
	}
	f := row.toDomain()
	return &f, nil
}

// GetFeeds returns all feeds in slot order
func (r *FeedRepository) GetFeeds(ctx context.Context) ([]domain.FeedConfig, error) {
	var rows []feedSQL
	if err := r.db.SelectContext(ctx, &rows, "SELECT "+feedColumns+" FROM feeds ORDER BY position, id"); err != nil {
		return nil, fmt.Errorf("get feeds: %w", err)
	}
	feeds := make([]domain.FeedConfig, 0, len(rows))
	for _, row := range rows {
		feeds = append(feeds, row.toDomain())
	}
	return feeds, nil
}

// CountFeeds returns number of configured feeds
func (r *FeedRepository) CountFeeds(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM feeds"); err != nil {
		return 0, fmt.Errorf("count feeds: %w", err)
	}
	return n, nil
}

// UpdateFeed changes url, category, interval and prompt of a feed
func (r *FeedRepository) UpdateFeed(ctx context.Context, feed domain.FeedConfig) error {
	query := `UPDATE feeds SET url = ?, category = ?, interval_sec = ?, prompt = ? WHERE id = ?`
	var affected int64
	err := withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, query, feed.URL, feed.Category, int64(feed.Interval/time.Second), feed.Prompt, feed.ID)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("update feed: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update feed: feed %d not found", feed.ID)
	}
	return nil
}

// UpdateFeedLastRun records the time of the last run of a feed
func (r *FeedRepository) UpdateFeedLastRun(ctx context.Context, feedID int64, ts time.Time) error {
	err := withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, "UPDATE feeds SET last_run = ? WHERE id = ?", ts.UTC(), feedID)
		return err
	})
	if err != nil {
		return fmt.Errorf("update feed last run: %w", err)
	}
	return nil
}

// DeleteFeed removes a feed together with its processed URLs
func (r *FeedRepository) DeleteFeed(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM processed_urls WHERE feed_id = ?", id); err != nil {
		return fmt.Errorf("delete processed urls: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM feeds WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete feed: %w", err)
	}
	return nil
}

func (f feedSQL) toDomain() domain.FeedConfig {
	return domain.FeedConfig{
		ID:       f.ID,
		Position: f.Position,
		URL:      f.URL,
		Category: f.Category,
		Interval: time.Duration(f.IntervalSec) * time.Second,
		Prompt:   f.Prompt,
		LastRun:  f.LastRun,
	}
}

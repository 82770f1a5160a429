package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedrewriter/pkg/config"
	"github.com/umputun/feedrewriter/pkg/domain"
	"github.com/umputun/feedrewriter/pkg/repository"
)

// Stores provides unified access to repositories for the scheduler and the admin API
type Stores struct {
	repos *repository.Repositories
}

// NewStores creates a new stores facade
func NewStores(repos *repository.Repositories) *Stores {
	return &Stores{repos: repos}
}

// SeedFeeds copies feeds from the config file into an empty store. Once the store has feeds
// they are managed through the admin API and config feeds are ignored.
func (s *Stores) SeedFeeds(ctx context.Context, feeds []config.Feed) (int, error) {
	count, err := s.repos.Feed.CountFeeds(ctx)
	if err != nil {
		return 0, fmt.Errorf("count feeds: %w", err)
	}
	if count > 0 {
		lgr.Printf("[DEBUG] store has %d feeds, config feeds not seeded", count)
		return 0, nil
	}
	for i, f := range feeds {
		fc := &domain.FeedConfig{Position: i + 1, URL: f.URL, Category: f.Category, Interval: f.Interval, Prompt: f.Prompt}
		if err := s.repos.Feed.CreateFeed(ctx, fc); err != nil {
			return i, fmt.Errorf("seed feed %s: %w", f.URL, err)
		}
	}
	if len(feeds) > 0 {
		lgr.Printf("[INFO] seeded %d feeds from config", len(feeds))
	}
	return len(feeds), nil
}

// Cleanup drops expired cache records
func (s *Stores) Cleanup(ctx context.Context, now time.Time) error {
	n, err := s.repos.Cache.DeleteExpired(ctx, now)
	if err != nil {
		return err
	}
	if n > 0 {
		lgr.Printf("[DEBUG] removed %d expired cache records", n)
	}
	return nil
}

// Feed management methods

func (s *Stores) GetFeed(ctx context.Context, id int64) (*domain.FeedConfig, error) {
	return s.repos.Feed.GetFeed(ctx, id)
}

func (s *Stores) GetFeeds(ctx context.Context) ([]domain.FeedConfig, error) {
	return s.repos.Feed.GetFeeds(ctx)
}

func (s *Stores) CreateFeed(ctx context.Context, feed *domain.FeedConfig) error {
	return s.repos.Feed.CreateFeed(ctx, feed)
}

func (s *Stores) UpdateFeed(ctx context.Context, feed domain.FeedConfig) error {
	return s.repos.Feed.UpdateFeed(ctx, feed)
}

func (s *Stores) DeleteFeed(ctx context.Context, id int64) error {
	return s.repos.Feed.DeleteFeed(ctx, id)
}

func (s *Stores) UpdateFeedLastRun(ctx context.Context, feedID int64, ts time.Time) error {
	return s.repos.Feed.UpdateFeedLastRun(ctx, feedID, ts)
}

// Setting methods

func (s *Stores) GetSetting(ctx context.Context, key string) (string, error) {
	return s.repos.Setting.GetSetting(ctx, key)
}

func (s *Stores) SetSetting(ctx context.Context, key, value string) error {
	return s.repos.Setting.SetSetting(ctx, key, value)
}

// Lock methods

func (s *Stores) Acquire(ctx context.Context, name string, now time.Time, ttl time.Duration) (bool, error) {
	return s.repos.Lock.Acquire(ctx, name, now, ttl)
}

func (s *Stores) Release(ctx context.Context, name string, expires time.Time) (bool, error) {
	return s.repos.Lock.Release(ctx, name, expires)
}

func (s *Stores) ForceRelease(ctx context.Context, name string) error {
	return s.repos.Lock.ForceRelease(ctx, name)
}

func (s *Stores) Status(ctx context.Context, name string, now time.Time) (held bool, expires time.Time, err error) {
	return s.repos.Lock.Status(ctx, name, now)
}

// Ledger methods

func (s *Stores) IsProcessed(ctx context.Context, feedID int64, url string) (bool, error) {
	return s.repos.Ledger.IsProcessed(ctx, feedID, url)
}

func (s *Stores) MarkProcessed(ctx context.Context, feedID int64, url string) error {
	return s.repos.Ledger.MarkProcessed(ctx, feedID, url)
}

func (s *Stores) CountProcessed(ctx context.Context, feedID int64) (int, error) {
	return s.repos.Ledger.CountProcessed(ctx, feedID)
}

func (s *Stores) ClearProcessed(ctx context.Context, feedID int64) error {
	return s.repos.Ledger.ClearProcessed(ctx, feedID)
}

// Journal methods

func (s *Stores) AddLogEntry(ctx context.Context, entry domain.LogEntry) error {
	return s.repos.Journal.AddLogEntry(ctx, entry)
}

func (s *Stores) GetLogEntries(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	return s.repos.Journal.GetLogEntries(ctx, limit)
}

func (s *Stores) ClearLogEntries(ctx context.Context) error {
	return s.repos.Journal.ClearLogEntries(ctx)
}

// Generated posts listing

func (s *Stores) ListPosts(ctx context.Context, limit int) ([]domain.PublishedPost, error) {
	return s.repos.Post.ListPosts(ctx, limit)
}

func (s *Stores) GetPost(ctx context.Context, id int64) (*domain.PublishedPost, error) {
	return s.repos.Post.GetPost(ctx, id)
}

// Research cache

func (s *Stores) GetCache(ctx context.Context, key string, now time.Time) (string, bool, error) {
	return s.repos.Cache.GetCache(ctx, key, now)
}

func (s *Stores) SetCache(ctx context.Context, key, value string, expires time.Time) error {
	return s.repos.Cache.SetCache(ctx, key, value, expires)
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/feedrewriter/pkg/domain"
)

// JournalRepository stores run journal entries
type JournalRepository struct {
	db         *sqlx.DB
	maxEntries int
}

type journalSQL struct {
	ID      int64     `db:"id"`
	TS      time.Time `db:"ts"`
	Source  string    `db:"source"`
	Message string    `db:"message"`
}

// NewJournalRepository creates a journal repository, maxEntries <= 0 disables pruning
func NewJournalRepository(db *sqlx.DB, maxEntries int) *JournalRepository {
	return &JournalRepository{db: db, maxEntries: maxEntries}
}

// AddLogEntry appends an entry. Once the journal grows past maxEntries the oldest half is dropped.
func (r *JournalRepository) AddLogEntry(ctx context.Context, entry domain.LogEntry) error {
	err := withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, "INSERT INTO journal (ts, source, message) VALUES (?, ?, ?)",
			entry.Timestamp.UTC(), string(entry.Source), entry.Message)
		return err
	})
	if err != nil {
		return fmt.Errorf("add log entry: %w", err)
	}

	if r.maxEntries <= 0 {
		return nil
	}
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM journal"); err != nil {
		return fmt.Errorf("count log entries: %w", err)
	}
	if count <= r.maxEntries {
		return nil
	}
	query := "DELETE FROM journal WHERE id IN (SELECT id FROM journal ORDER BY id ASC LIMIT ?)"
	err = withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, query, count/2)
		return err
	})
	if err != nil {
		return fmt.Errorf("prune log entries: %w", err)
	}
	return nil
}

// GetLogEntries returns up to limit newest entries, newest first
func (r *JournalRepository) GetLogEntries(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []journalSQL
	if err := r.db.SelectContext(ctx, &rows, "SELECT id, ts, source, message FROM journal ORDER BY id DESC LIMIT ?", limit); err != nil {
		return nil, fmt.Errorf("get log entries: %w", err)
	}
	res := make([]domain.LogEntry, 0, len(rows))
	for _, row := range rows {
		res = append(res, domain.LogEntry{ID: row.ID, Timestamp: row.TS, Source: domain.RunSource(row.Source), Message: row.Message})
	}
	return res, nil
}

// ClearLogEntries removes all journal entries
func (r *JournalRepository) ClearLogEntries(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM journal"); err != nil {
		return fmt.Errorf("clear log entries: %w", err)
	}
	return nil
}

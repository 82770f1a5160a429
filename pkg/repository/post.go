package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/feedrewriter/pkg/domain"
)

// PostRepository keeps generated posts, their categories and tags.
// It backs the local publisher and the generated-articles listing.
type PostRepository struct {
	db *sqlx.DB
}

type postSQL struct {
	ID          int64      `db:"id"`
	RemoteID    int64      `db:"remote_id"`
	Title       string     `db:"title"`
	HTMLBody    string     `db:"html_body"`
	Category    string     `db:"category"`
	ImagePath   string     `db:"image_path"`
	SourceFeed  string     `db:"source_feed"`
	SourceURL   string     `db:"source_url"`
	PublishedAt *time.Time `db:"published_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

// NewPostRepository creates a post repository
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// PostExists checks for a post with exactly the same title
func (r *PostRepository) PostExists(ctx context.Context, title string) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM posts WHERE title = ?", title); err != nil {
		return false, fmt.Errorf("check post title: %w", err)
	}
	return n > 0, nil
}

// EnsureCategory returns id of the category, creating it if absent
func (r *PostRepository) EnsureCategory(ctx context.Context, name string) (int64, error) {
	err := withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, "INSERT OR IGNORE INTO categories (name) VALUES (?)", name)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	var id int64
	if err := r.db.GetContext(ctx, &id, "SELECT id FROM categories WHERE name = ?", name); err != nil {
		return 0, fmt.Errorf("get category: %w", err)
	}
	return id, nil
}

// SavePost stores a post. remoteID is the id assigned by an external publisher, 0 for local posts.
func (r *PostRepository) SavePost(ctx context.Context, post domain.Post, remoteID int64) (int64, error) {
	query := `
		INSERT INTO posts (remote_id, title, html_body, category_id, source_feed, source_url, feed_num, generated, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	publishedAt := post.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}
	var id int64
	err := withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, query, remoteID, post.Title, post.HTMLBody, post.CategoryID,
			post.Meta.SourceFeed, post.Meta.SourceURL, post.Meta.FeedNum, post.Meta.Generated, publishedAt.UTC())
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("save post: %w", err)
	}
	return id, nil
}

// SetPostImage records the stored image path of a post
func (r *PostRepository) SetPostImage(ctx context.Context, postID int64, path string) error {
	err := withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, "UPDATE posts SET image_path = ? WHERE id = ?", path, postID)
		return err
	})
	if err != nil {
		return fmt.Errorf("set post image: %w", err)
	}
	return nil
}

// SetTags replaces tags of a post
func (r *PostRepository) SetTags(ctx context.Context, postID int64, tags []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM post_tags WHERE post_id = ?", postID); err != nil {
		return fmt.Errorf("delete tags: %w", err)
	}
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO post_tags (post_id, tag) VALUES (?, ?)", postID, tag); err != nil {
			return fmt.Errorf("insert tag %q: %w", tag, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tags: %w", err)
	}
	return nil
}

// GetPost returns a single post with category and tags
func (r *PostRepository) GetPost(ctx context.Context, id int64) (*domain.PublishedPost, error) {
	var row postSQL
	if err := r.db.GetContext(ctx, &row, postSelect+" WHERE p.id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	posts, err := r.withTags(ctx, []postSQL{row})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// ListPosts returns newest posts first
func (r *PostRepository) ListPosts(ctx context.Context, limit int) ([]domain.PublishedPost, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []postSQL
	if err := r.db.SelectContext(ctx, &rows, postSelect+" ORDER BY p.id DESC LIMIT ?", limit); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return r.withTags(ctx, rows)
}

const postSelect = `
	SELECT p.id, p.remote_id, p.title, p.html_body, COALESCE(c.name, '') AS category, p.image_path,
		p.source_feed, p.source_url, p.published_at, p.created_at
	FROM posts p LEFT JOIN categories c ON c.id = p.category_id`

func (r *PostRepository) withTags(ctx context.Context, rows []postSQL) ([]domain.PublishedPost, error) {
	res := make([]domain.PublishedPost, 0, len(rows))
	if len(rows) == 0 {
		return res, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	query, args, err := sqlx.In("SELECT post_id, tag FROM post_tags WHERE post_id IN (?) ORDER BY tag", ids)
	if err != nil {
		return nil, fmt.Errorf("build tags query: %w", err)
	}
	var tagRows []struct {
		PostID int64  `db:"post_id"`
		Tag    string `db:"tag"`
	}
	if err := r.db.SelectContext(ctx, &tagRows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get tags: %w", err)
	}
	tags := make(map[int64][]string)
	for _, tr := range tagRows {
		tags[tr.PostID] = append(tags[tr.PostID], tr.Tag)
	}

	for _, row := range rows {
		p := domain.PublishedPost{
			ID:         row.ID,
			RemoteID:   row.RemoteID,
			Title:      row.Title,
			HTMLBody:   row.HTMLBody,
			Category:   row.Category,
			Tags:       tags[row.ID],
			ImagePath:  row.ImagePath,
			SourceFeed: row.SourceFeed,
			SourceURL:  row.SourceURL,
			CreatedAt:  row.CreatedAt,
		}
		if row.PublishedAt != nil {
			p.PublishedAt = *row.PublishedAt
		}
		res = append(res, p)
	}
	return res, nil
}

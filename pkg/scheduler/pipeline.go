package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedrewriter/pkg/content"
	"github.com/umputun/feedrewriter/pkg/domain"
	"github.com/umputun/feedrewriter/pkg/llm"
)

const defaultCategory = "Uncategorized"

// skipError is a normal "don't publish this entry" outcome, not a failure
type skipError string

func (e skipError) Error() string { return string(e) }

func skip(format string, args ...any) error { return skipError(fmt.Sprintf(format, args...)) }

// articlePage fetches the article page once, on first use
type articlePage struct {
	fetcher PageFetcher
	url     string
	html    string
	done    bool
}

func (p *articlePage) get(ctx context.Context, log lgr.L) string {
	if p.done {
		return p.html
	}
	p.done = true
	html, err := p.fetcher.FetchPage(ctx, p.url)
	if err != nil {
		log.Logf("[WARN] can't fetch article page %s: %v", p.url, err)
		return ""
	}
	p.html = html
	return p.html
}

// processFeed goes through feed entries until one is published. It returns true if
// an article was published. On publish checkedAt is stored as the feed's last run.
func (s *Scheduler) processFeed(ctx context.Context, feed domain.FeedConfig, checkedAt time.Time, log lgr.L) bool {
	parsed, err := s.Loader.Load(ctx, feed.URL)
	if err != nil {
		log.Logf("[WARN] feed #%d %s skipped: %v", feed.Position, feed.URL, err)
		return false
	}
	lgr.Printf("[DEBUG] feed #%d %s parsed (%s attempt), %d entries", feed.Position, feed.URL, parsed.Attempt, len(parsed.Entries))

	for i, entry := range parsed.Entries {
		if i >= s.cfg.MaxEntriesPerFeed || ctx.Err() != nil {
			break
		}
		err := s.processEntry(ctx, feed, entry, log)
		var se skipError
		switch {
		case err == nil:
			if uerr := s.Store.UpdateFeedLastRun(ctx, feed.ID, checkedAt); uerr != nil {
				log.Logf("[WARN] can't update last run of feed #%d: %v", feed.Position, uerr)
			}
			return true
		case errors.As(err, &se):
			log.Logf("[INFO] feed #%d skip %q: %s", feed.Position, entry.Title, se)
		default:
			log.Logf("[WARN] feed #%d failed %q: %v", feed.Position, entry.Title, err)
		}
	}
	log.Logf("[INFO] feed #%d %s: nothing published", feed.Position, feed.URL)
	return false
}

// processEntry runs dedup checks, extraction, filtering, rewriting and publishing for one
// entry. Returns nil if the entry was published, skipError if it was skipped on purpose.
func (s *Scheduler) processEntry(ctx context.Context, feed domain.FeedConfig, entry domain.Entry, log lgr.L) error {
	title := strings.TrimSpace(entry.Title)
	if title == "" || entry.Link == "" {
		return skip("no title or link")
	}

	exists, err := s.Publisher.PostExists(ctx, title)
	if err != nil {
		return fmt.Errorf("check title: %w", err)
	}
	if exists {
		return skip("post with the same title exists")
	}

	if s.cfg.IgnoreProcessedURLs {
		processed, perr := s.Store.IsProcessed(ctx, feed.ID, entry.Link)
		if perr != nil {
			return fmt.Errorf("check processed url: %w", perr)
		}
		if processed {
			return skip("already processed %s", entry.Link)
		}
	}

	page := &articlePage{fetcher: s.Fetcher, url: entry.Link}
	article := domain.Article{Title: title, Link: entry.Link, PublishedAt: entry.PublishedAt}

	article.ImageURL = s.Images.FromEntry(entry)
	if article.ImageURL == "" {
		article.ImageURL = s.Images.FromHTML(page.get(ctx, log), entry.Link)
	}
	if article.ImageURL == "" && s.cfg.IgnoreNoImage {
		return skip("no image")
	}

	article.Body = s.Extractor.FromEntry(entry)
	if !s.Extractor.Enough(article.Body) {
		if text := s.Extractor.FromHTML(page.get(ctx, log), entry.Link); text != "" {
			article.Body = text
		}
	}
	if article.Body == "" {
		return skip("no content")
	}

	if ok, reason := s.Filter.Check(article.Title, article.Body); !ok {
		return skip("%s", reason)
	}

	var research string
	if s.Research != nil {
		if research, err = s.Research.Collect(ctx, article.Link, page.get(ctx, log)); err != nil {
			log.Logf("[WARN] research for %s failed: %v", article.Link, err)
			research = ""
		}
	}

	rewritten, err := s.Rewriter.Rewrite(ctx, llm.RewriteRequest{
		Title: article.Title, Body: article.Body, Prompt: feed.Prompt, Research: research, TOC: s.cfg.EnableTOC,
	})
	if err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}
	if rewritten.Title != title {
		if exists, err = s.Publisher.PostExists(ctx, rewritten.Title); err != nil {
			return fmt.Errorf("check rewritten title: %w", err)
		}
		if exists {
			return skip("post with rewritten title %q exists", rewritten.Title)
		}
	}

	if s.cfg.GenerateTags {
		tags, terr := s.Rewriter.GenerateTags(ctx, rewritten.HTMLBody)
		if terr != nil {
			log.Logf("[WARN] can't generate tags for %q: %v", rewritten.Title, terr)
		}
		rewritten.Tags = tags
	}

	return s.publish(ctx, feed, article, rewritten, log)
}

// publish creates the post. Once the post exists the entry counts as published, image and
// tag failures are only logged.
func (s *Scheduler) publish(ctx context.Context, feed domain.FeedConfig, article domain.Article,
	rewritten *domain.RewrittenArticle, log lgr.L) error {
	category := feed.Category
	if category == "" {
		category = defaultCategory
	}
	catID, err := s.Publisher.EnsureCategory(ctx, category)
	if err != nil {
		return fmt.Errorf("ensure category %q: %w", category, err)
	}

	post := domain.Post{
		Title:       rewritten.Title,
		HTMLBody:    rewritten.HTMLBody,
		CategoryID:  catID,
		PublishedAt: s.now(),
		Meta:        domain.PostMeta{Generated: true, SourceFeed: feed.URL, SourceURL: article.Link, FeedNum: feed.Position},
	}
	postID, err := s.Publisher.CreatePost(ctx, post)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	if article.ImageURL != "" {
		if err := s.attachImage(ctx, postID, article.ImageURL, rewritten.Title); err != nil {
			log.Logf("[WARN] post %d published without image: %v", postID, err)
		}
	}

	if len(rewritten.Tags) > 0 {
		if err := s.Publisher.SetTags(ctx, postID, rewritten.Tags); err != nil {
			log.Logf("[WARN] can't set tags of post %d: %v", postID, err)
		}
	}

	if err := s.Store.MarkProcessed(ctx, feed.ID, article.Link); err != nil {
		log.Logf("[ERROR] can't mark %s processed: %v", article.Link, err)
	}
	log.Logf("[INFO] published %q as post %d, feed #%d, source %s", rewritten.Title, postID, feed.Position, article.Link)
	return nil
}

func (s *Scheduler) attachImage(ctx context.Context, postID int64, imageURL, title string) error {
	img, err := s.Fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		return fmt.Errorf("download %s: %w", imageURL, err)
	}
	slug := llm.Slugify(title)
	if slug == "" {
		slug = "image"
	}
	filename := slug + "." + content.ImageExt(imageURL)
	if err := s.Publisher.AttachImage(ctx, postID, img.Data, filename, title); err != nil {
		return fmt.Errorf("attach image: %w", err)
	}
	return nil
}

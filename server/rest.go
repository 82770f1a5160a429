package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/umputun/feedrewriter/pkg/domain"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
	defaultInterval  = 60 * time.Minute
)

type statusResponse struct {
	Version     string     `json:"version"`
	State       string     `json:"state"`
	LockHeld    bool       `json:"lock_held"`
	LockExpires *time.Time `json:"lock_expires,omitempty"`
	Interval    string     `json:"interval"`
	LastTick    *time.Time `json:"last_tick,omitempty"`
	NextTick    *time.Time `json:"next_tick,omitempty"`
	LastCronRun string     `json:"last_cron_run,omitempty"`
	Feeds       []feedView `json:"feeds"`
}

type feedView struct {
	ID        int64      `json:"id"`
	Position  int        `json:"position"`
	URL       string     `json:"url"`
	Category  string     `json:"category"`
	Interval  string     `json:"interval"`
	Prompt    string     `json:"prompt,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	Due       bool       `json:"due"`
	Processed *int       `json:"processed,omitempty"` // ledger size, set in the feeds listing only
}

// feedRequest is the body of feed create and update calls, interval is a Go duration like "90m"
type feedRequest struct {
	URL      string `json:"url"`
	Category string `json:"category"`
	Interval string `json:"interval"`
	Prompt   string `json:"prompt"`
	Position int    `json:"position"`
}

type logView struct {
	ID      int64     `json:"id"`
	Time    time.Time `json:"time"`
	Source  string    `json:"source"`
	Message string    `json:"message"`
	Line    string    `json:"line"`
}

type postView struct {
	ID          int64     `json:"id"`
	RemoteID    int64     `json:"remote_id,omitempty"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Image       string    `json:"image,omitempty"`
	SourceFeed  string    `json:"source_feed"`
	SourceURL   string    `json:"source_url"`
	PublishedAt time.Time `json:"published_at"`
	Body        string    `json:"body,omitempty"`
}

type runResponse struct {
	Status       string    `json:"status"`
	Skipped      string    `json:"skipped,omitempty"`
	FeedsChecked int       `json:"feeds_checked"`
	Published    int       `json:"published"`
	Started      time.Time `json:"started"`
	Finished     time.Time `json:"finished"`
}

// statusHandler returns scheduler state, lock status and configured feeds
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	st, err := s.scheduler.Status(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to get scheduler status: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	now := time.Now()
	resp := statusResponse{
		Version:     s.version,
		State:       string(st.State),
		LockHeld:    st.LockHeld,
		Interval:    st.Interval.String(),
		LastCronRun: st.LastCronRun,
		Feeds:       make([]feedView, 0, len(st.Feeds)),
	}
	if st.LockHeld {
		resp.LockExpires = timePtr(st.LockExpires)
	}
	resp.LastTick = timePtr(st.LastTick)
	resp.NextTick = timePtr(st.NextTick)
	for _, f := range st.Feeds {
		resp.Feeds = append(resp.Feeds, toFeedView(f, now))
	}
	renderJSON(w, r, http.StatusOK, resp)
}

// runHandler starts a manual run. By default the run goes on in background and
// the call returns 202, with wait=true the call blocks and returns the run result.
func (s *Server) runHandler(w http.ResponseWriter, r *http.Request) {
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		res, err := s.scheduler.RunNow(r.Context())
		if err != nil {
			log.Printf("[ERROR] manual run failed: %v", err)
			renderError(w, r, err, http.StatusInternalServerError)
			return
		}
		status := "done"
		if res.Skipped != "" {
			status = "skipped"
		}
		renderJSON(w, r, http.StatusOK, runResponse{Status: status, Skipped: res.Skipped, FeedsChecked: res.FeedsChecked,
			Published: res.Published, Started: res.Started, Finished: res.Finished})
		return
	}

	go func() {
		if _, err := s.scheduler.RunNow(context.WithoutCancel(r.Context())); err != nil {
			log.Printf("[ERROR] manual run failed: %v", err)
		}
	}()
	renderJSON(w, r, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) pauseHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.scheduler.Pause(r.Context()); err != nil {
		log.Printf("[ERROR] failed to pause: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]string{"state": string(domain.StatePaused)})
}

func (s *Server) resumeHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.scheduler.Resume(r.Context()); err != nil {
		log.Printf("[ERROR] failed to resume: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]string{"state": string(domain.StateActive)})
}

// clearLockHandler force-releases the run lock
func (s *Server) clearLockHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.scheduler.ClearLock(r.Context()); err != nil {
		log.Printf("[ERROR] failed to clear lock: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}

// logsHandler returns the newest journal entries
func (s *Server) logsHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := s.db.GetLogEntries(r.Context(), listLimit(r))
	if err != nil {
		log.Printf("[ERROR] failed to get log entries: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	res := make([]logView, 0, len(entries))
	for _, e := range entries {
		res = append(res, logView{ID: e.ID, Time: e.Timestamp, Source: string(e.Source), Message: e.Message, Line: e.String()})
	}
	renderJSON(w, r, http.StatusOK, res)
}

func (s *Server) clearLogsHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.ClearLogEntries(r.Context()); err != nil {
		log.Printf("[ERROR] failed to clear log entries: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}

// postsHandler lists generated posts, newest first
func (s *Server) postsHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := s.db.ListPosts(r.Context(), listLimit(r))
	if err != nil {
		log.Printf("[ERROR] failed to list posts: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	res := make([]postView, 0, len(posts))
	for _, p := range posts {
		res = append(res, toPostView(p, false))
	}
	renderJSON(w, r, http.StatusOK, res)
}

func (s *Server) postHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	post, err := s.db.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			renderError(w, r, err, http.StatusNotFound)
			return
		}
		log.Printf("[ERROR] failed to get post %d: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, toPostView(*post, true))
}

func (s *Server) feedsHandler(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.db.GetFeeds(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to get feeds: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	now := time.Now()
	res := make([]feedView, 0, len(feeds))
	for _, f := range feeds {
		processed, cerr := s.db.CountProcessed(r.Context(), f.ID)
		if cerr != nil {
			log.Printf("[ERROR] failed to count processed urls of feed %d: %v", f.ID, cerr)
			renderError(w, r, cerr, http.StatusInternalServerError)
			return
		}
		v := toFeedView(f, now)
		v.Processed = &processed
		res = append(res, v)
	}
	renderJSON(w, r, http.StatusOK, res)
}

// createFeedHandler adds a feed, zero position appends it to the end
func (s *Server) createFeedHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := decodeFeedRequest(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	feed, err := req.toFeed()
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	if err := s.db.CreateFeed(ctx, &feed); err != nil {
		log.Printf("[ERROR] failed to create feed: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	log.Printf("[INFO] feed #%d %s added", feed.Position, feed.URL)
	s.reschedule(ctx)

	renderJSON(w, r, http.StatusCreated, toFeedView(feed, time.Now()))
}

// updateFeedHandler changes url, category, interval and prompt of a feed
func (s *Server) updateFeedHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	req, err := decodeFeedRequest(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	upd, err := req.toFeed()
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	feed, err := s.db.GetFeed(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			renderError(w, r, fmt.Errorf("feed %d not found", id), http.StatusNotFound)
			return
		}
		log.Printf("[ERROR] failed to get feed %d: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	feed.URL, feed.Category, feed.Interval, feed.Prompt = upd.URL, upd.Category, upd.Interval, upd.Prompt

	if err := s.db.UpdateFeed(ctx, *feed); err != nil {
		log.Printf("[ERROR] failed to update feed %d: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.reschedule(ctx)

	renderJSON(w, r, http.StatusOK, toFeedView(*feed, time.Now()))
}

// clearProcessedHandler forgets processed urls of a feed, so its entries can be published again
func (s *Server) clearProcessedHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	if _, err = s.db.GetFeed(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			renderError(w, r, fmt.Errorf("feed %d not found", id), http.StatusNotFound)
			return
		}
		log.Printf("[ERROR] failed to get feed %d: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	count, err := s.db.CountProcessed(ctx, id)
	if err != nil {
		log.Printf("[ERROR] failed to count processed urls of feed %d: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	if err := s.db.ClearProcessed(ctx, id); err != nil {
		log.Printf("[ERROR] failed to clear processed urls of feed %d: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	log.Printf("[INFO] %d processed urls of feed id %d cleared", count, id)
	renderJSON(w, r, http.StatusOK, map[string]int{"cleared": count})
}

func (s *Server) deleteFeedHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.db.DeleteFeed(ctx, id); err != nil {
		log.Printf("[ERROR] failed to delete feed %d: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	log.Printf("[INFO] feed id %d deleted", id)
	s.reschedule(ctx)

	w.WriteHeader(http.StatusNoContent)
}

// reschedule recomputes the tick interval after feed changes, failure doesn't fail the request
func (s *Server) reschedule(ctx context.Context) {
	if err := s.scheduler.Reschedule(ctx); err != nil {
		log.Printf("[WARN] failed to reschedule: %v", err)
	}
}

func decodeFeedRequest(r *http.Request) (feedRequest, error) {
	var req feedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return feedRequest{}, fmt.Errorf("invalid request body: %w", err)
	}
	return req, nil
}

// toFeed validates request and makes a feed config from it
func (req feedRequest) toFeed() (domain.FeedConfig, error) {
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.FeedConfig{}, fmt.Errorf("invalid feed url %q", req.URL)
	}

	interval := defaultInterval
	if req.Interval != "" {
		if interval, err = time.ParseDuration(req.Interval); err != nil {
			return domain.FeedConfig{}, fmt.Errorf("invalid interval %q: %w", req.Interval, err)
		}
	}
	if interval < time.Minute {
		return domain.FeedConfig{}, fmt.Errorf("interval must be at least 1m, got %s", interval)
	}
	if req.Position < 0 {
		return domain.FeedConfig{}, fmt.Errorf("position must be non-negative")
	}

	return domain.FeedConfig{URL: req.URL, Category: req.Category, Interval: interval, Prompt: req.Prompt, Position: req.Position}, nil
}

func toFeedView(f domain.FeedConfig, now time.Time) feedView {
	return feedView{ID: f.ID, Position: f.Position, URL: f.URL, Category: f.Category, Interval: f.Interval.String(),
		Prompt: f.Prompt, LastRun: f.LastRun, Due: f.Due(now)}
}

func toPostView(p domain.PublishedPost, withBody bool) postView {
	v := postView{ID: p.ID, RemoteID: p.RemoteID, Title: p.Title, Category: p.Category, Tags: p.Tags,
		SourceFeed: p.SourceFeed, SourceURL: p.SourceURL, PublishedAt: p.PublishedAt}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if p.ImagePath != "" {
		v.Image = "/images/" + filepath.Base(p.ImagePath)
	}
	if withBody {
		v.Body = p.HTMLBody
	}
	return v
}

// listLimit gets limit query param, falls back to default for missing or bad values
func listLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

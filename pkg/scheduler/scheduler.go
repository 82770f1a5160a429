package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedrewriter/pkg/content"
	"github.com/umputun/feedrewriter/pkg/domain"
	"github.com/umputun/feedrewriter/pkg/filter"
	"github.com/umputun/feedrewriter/pkg/llm"
)

//go:generate moq -out mocks/feed_loader.go -pkg mocks -skip-ensure -fmt goimports . FeedLoader
//go:generate moq -out mocks/page_fetcher.go -pkg mocks -skip-ensure -fmt goimports . PageFetcher
//go:generate moq -out mocks/rewriter.go -pkg mocks -skip-ensure -fmt goimports . Rewriter
//go:generate moq -out mocks/researcher.go -pkg mocks -skip-ensure -fmt goimports . Researcher
//go:generate moq -out mocks/publisher.go -pkg mocks -skip-ensure -fmt goimports . Publisher

const (
	lockName       = "feedrewriter_run"
	defaultTick    = time.Hour
	defaultLockTTL = 25 * time.Minute
)

// FeedStore provides feed configurations and records their runs
type FeedStore interface {
	GetFeeds(ctx context.Context) ([]domain.FeedConfig, error)
	UpdateFeedLastRun(ctx context.Context, feedID int64, ts time.Time) error
}

// SettingStore keeps runtime settings, pause state and last cron run
type SettingStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// LockStore implements the run lock with hard expiry. Release frees only the lock with
// the expiry written by Acquire, ForceRelease frees any.
type LockStore interface {
	Acquire(ctx context.Context, name string, now time.Time, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name string, expires time.Time) (bool, error)
	ForceRelease(ctx context.Context, name string) error
	Status(ctx context.Context, name string, now time.Time) (held bool, expires time.Time, err error)
}

// Ledger is the per-feed set of processed URLs
type Ledger interface {
	IsProcessed(ctx context.Context, feedID int64, url string) (bool, error)
	MarkProcessed(ctx context.Context, feedID int64, url string) error
}

// JournalStore receives run journal lines
type JournalStore interface {
	AddLogEntry(ctx context.Context, entry domain.LogEntry) error
}

// Store combines everything the scheduler keeps in the database
type Store interface {
	FeedStore
	SettingStore
	LockStore
	Ledger
	JournalStore
}

// FeedLoader fetches and parses a feed
type FeedLoader interface {
	Load(ctx context.Context, url string) (*domain.ParsedFeed, error)
}

// PageFetcher downloads article pages and images
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (string, error)
	FetchImage(ctx context.Context, imageURL string) (*content.Image, error)
}

// Rewriter rewrites articles and generates tags with the LLM
type Rewriter interface {
	Rewrite(ctx context.Context, req llm.RewriteRequest) (*domain.RewrittenArticle, error)
	GenerateTags(ctx context.Context, body string) ([]string, error)
}

// Researcher collects excerpts of sources linked from the article
type Researcher interface {
	Collect(ctx context.Context, articleURL, page string) (string, error)
}

// Publisher is the publishing target, WordPress or the local store
type Publisher interface {
	PostExists(ctx context.Context, title string) (bool, error)
	EnsureCategory(ctx context.Context, name string) (int64, error)
	CreatePost(ctx context.Context, post domain.Post) (int64, error)
	AttachImage(ctx context.Context, postID int64, image []byte, filename, alt string) error
	SetTags(ctx context.Context, postID int64, tags []string) error
}

// Params holds collaborators of the scheduler. Research is optional, Extractor, Images and
// Filter get defaults if not set.
type Params struct {
	Store     Store
	Loader    FeedLoader
	Fetcher   PageFetcher
	Extractor *content.Extractor
	Images    *content.ImageExtractor
	Research  Researcher
	Rewriter  Rewriter
	Publisher Publisher
	Filter    *filter.Filter
}

// Config holds scheduler configuration
type Config struct {
	LockTTL                time.Duration
	MinTick                time.Duration
	ManualBypassesInterval bool
	ManualBypassesPause    bool
	MaxEntriesPerFeed      int
	IgnoreProcessedURLs    bool
	IgnoreNoImage          bool
	EnableTOC              bool
	GenerateTags           bool
	JournalDedup           time.Duration
	RunOnStart             bool
}

// Scheduler runs the rewrite pipeline on a timer and on request. Ticks never overlap,
// the run lock in the store guards them even across processes.
type Scheduler struct {
	Params
	cfg   Config
	state *State
	now   func() time.Time

	resetCh chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status is a snapshot of the scheduler for the admin API
type Status struct {
	State       domain.PauseState
	LockHeld    bool
	LockExpires time.Time
	Interval    time.Duration
	LastTick    time.Time
	NextTick    time.Time
	LastCronRun string
	Feeds       []domain.FeedConfig
}

// New creates a scheduler
func New(params Params, cfg Config) *Scheduler {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	if cfg.MinTick <= 0 {
		cfg.MinTick = time.Minute
	}
	if cfg.MaxEntriesPerFeed <= 0 {
		cfg.MaxEntriesPerFeed = 10
	}
	if cfg.JournalDedup <= 0 {
		cfg.JournalDedup = time.Minute
	}
	if params.Extractor == nil {
		params.Extractor = content.NewExtractor(content.ExtractorOpts{})
	}
	if params.Images == nil {
		params.Images = content.NewImageExtractor("")
	}
	if params.Filter == nil {
		params.Filter = filter.New("", "")
	}
	return &Scheduler{
		Params:  params,
		cfg:     cfg,
		state:   &State{},
		now:     time.Now,
		resetCh: make(chan struct{}, 1),
	}
}

// Start computes the tick interval and starts the timer loop
func (s *Scheduler) Start(ctx context.Context) {
	if err := s.Reschedule(ctx); err != nil {
		lgr.Printf("[WARN] can't compute tick interval, using %v: %v", s.state.Interval(), err)
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)
	lgr.Printf("[INFO] scheduler started, tick every %v", s.state.Interval())
}

// Stop stops the timer loop and waits for the running tick to finish
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.state.Interval())
	defer ticker.Stop()
	s.state.setNextTick(s.now().Add(s.state.Interval()))

	if s.cfg.RunOnStart {
		s.cronTick(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.resetCh:
			ticker.Reset(s.state.Interval())
			s.state.setNextTick(s.now().Add(s.state.Interval()))
		case <-ticker.C:
			s.cronTick(ctx)
			s.state.setNextTick(s.now().Add(s.state.Interval()))
		}
	}
}

func (s *Scheduler) cronTick(ctx context.Context) {
	if _, err := s.Tick(ctx, domain.SourceCron); err != nil {
		lgr.Printf("[WARN] cron tick failed: %v", err)
	}
}

// RunNow makes a manual pass
func (s *Scheduler) RunNow(ctx context.Context) (domain.RunResult, error) {
	return s.Tick(ctx, domain.SourceManual)
}

// Tick is one pass of the pipeline. It does nothing if the scheduler is paused or another
// pass holds the lock. The lock is released on every exit path, panics included.
func (s *Scheduler) Tick(ctx context.Context, source domain.RunSource) (res domain.RunResult, err error) {
	res = domain.RunResult{Source: source, Started: s.now()}
	defer func() { res.Finished = s.now() }()
	log := s.runLog(ctx, source)

	if source == domain.SourceCron || !s.cfg.ManualBypassesPause {
		paused, perr := s.Paused(ctx)
		if perr != nil {
			return res, fmt.Errorf("get pause state: %w", perr)
		}
		if paused {
			if source == domain.SourceManual {
				log.Logf("[INFO] paused, skip")
			} else {
				lgr.Printf("[DEBUG] paused, skip cron tick")
			}
			res.Skipped = "paused"
			return res, nil
		}
	}

	acquiredAt := s.now()
	locked, err := s.Store.Acquire(ctx, lockName, acquiredAt, s.cfg.LockTTL)
	if err != nil {
		return res, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		log.Logf("[INFO] already running, skip")
		res.Skipped = "locked"
		return res, nil
	}
	s.state.setLastTick(res.Started)

	defer func() {
		if r := recover(); r != nil {
			log.Logf("[ERROR] run panicked: %v", r)
			err = fmt.Errorf("run panicked: %v", r)
		}
		released, rerr := s.Store.Release(context.WithoutCancel(ctx), lockName, acquiredAt.Add(s.cfg.LockTTL))
		switch {
		case rerr != nil:
			log.Logf("[ERROR] can't release lock: %v", rerr)
		case !released:
			log.Logf("[WARN] run lock expired during the run and was taken over, left in place")
		}
	}()

	log.Logf("[INFO] run started")
	res.FeedsChecked, res.Published, err = s.run(ctx, source, log)
	if err != nil {
		log.Logf("[ERROR] run failed: %v", err)
		return res, err
	}

	if res.Published > 0 {
		if serr := s.Store.SetSetting(ctx, domain.SettingLastCronRun, s.now().UTC().Format(time.RFC3339)); serr != nil {
			log.Logf("[WARN] can't save last run time: %v", serr)
		}
	}
	log.Logf("[INFO] run finished, %d feeds checked, %d published", res.FeedsChecked, res.Published)
	return res, nil
}

// run walks feeds in slot order. Cron pass stops after the first feed which published,
// manual pass goes through all of them.
func (s *Scheduler) run(ctx context.Context, source domain.RunSource, log lgr.L) (checked, published int, err error) {
	feeds, err := s.Store.GetFeeds(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("get feeds: %w", err)
	}
	if len(feeds) == 0 {
		log.Logf("[INFO] no feeds configured")
		return 0, 0, nil
	}

	ignoreInterval := source == domain.SourceManual && s.cfg.ManualBypassesInterval
	for _, f := range feeds {
		if ctx.Err() != nil {
			return checked, published, ctx.Err()
		}
		checkedAt := s.now()
		if !ignoreInterval && !f.Due(checkedAt) {
			lgr.Printf("[DEBUG] feed #%d %s is not due, last run %v", f.Position, f.URL, f.LastRun)
			continue
		}
		checked++
		if !s.processFeed(ctx, f, checkedAt, log) {
			continue
		}
		published++
		if source == domain.SourceCron {
			break
		}
	}
	return checked, published, nil
}

// Paused reports whether cron ticks are paused
func (s *Scheduler) Paused(ctx context.Context) (bool, error) {
	val, err := s.Store.GetSetting(ctx, domain.SettingCronStatus)
	if err != nil {
		return false, err
	}
	return domain.PauseState(val) == domain.StatePaused, nil
}

// Pause stops cron ticks from doing work
func (s *Scheduler) Pause(ctx context.Context) error {
	if err := s.Store.SetSetting(ctx, domain.SettingCronStatus, string(domain.StatePaused)); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	lgr.Printf("[INFO] scheduler paused")
	return nil
}

// Resume lets cron ticks work again
func (s *Scheduler) Resume(ctx context.Context) error {
	if err := s.Store.SetSetting(ctx, domain.SettingCronStatus, string(domain.StateActive)); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	lgr.Printf("[INFO] scheduler resumed")
	return nil
}

// ClearLock removes the run lock, used to unstick a wedged run
func (s *Scheduler) ClearLock(ctx context.Context) error {
	if err := s.Store.ForceRelease(ctx, lockName); err != nil {
		return fmt.Errorf("clear lock: %w", err)
	}
	lgr.Printf("[INFO] run lock cleared")
	return nil
}

// Reschedule sets tick interval to the shortest feed interval, not below MinTick.
// Nested calls are ignored and an unchanged interval doesn't touch the timer.
func (s *Scheduler) Reschedule(ctx context.Context) error {
	if !s.state.beginReschedule() {
		lgr.Printf("[DEBUG] reschedule already in progress")
		return nil
	}
	defer s.state.endReschedule()

	feeds, err := s.Store.GetFeeds(ctx)
	if err != nil {
		return fmt.Errorf("get feeds: %w", err)
	}
	interval := tickInterval(feeds, s.cfg.MinTick)
	if !s.state.setInterval(interval) {
		return nil
	}
	lgr.Printf("[INFO] tick interval set to %v", interval)
	select {
	case s.resetCh <- struct{}{}:
	default:
	}
	return nil
}

// Status returns pause and lock state, timing and feeds
func (s *Scheduler) Status(ctx context.Context) (*Status, error) {
	now := s.now()
	res := &Status{State: domain.StateActive, Interval: s.state.Interval(), LastTick: s.state.LastTick(), NextTick: s.state.NextTick()}

	paused, err := s.Paused(ctx)
	if err != nil {
		return nil, fmt.Errorf("get pause state: %w", err)
	}
	if paused {
		res.State = domain.StatePaused
	}
	if res.LockHeld, res.LockExpires, err = s.Store.Status(ctx, lockName, now); err != nil {
		return nil, fmt.Errorf("get lock status: %w", err)
	}
	if res.LastCronRun, err = s.Store.GetSetting(ctx, domain.SettingLastCronRun); err != nil {
		return nil, fmt.Errorf("get last run: %w", err)
	}
	if res.Feeds, err = s.Store.GetFeeds(ctx); err != nil {
		return nil, fmt.Errorf("get feeds: %w", err)
	}
	return res, nil
}

// tickInterval is the shortest feed interval bounded by floor, defaultTick without feeds
func tickInterval(feeds []domain.FeedConfig, floor time.Duration) time.Duration {
	res := time.Duration(0)
	for _, f := range feeds {
		if f.Interval > 0 && (res == 0 || f.Interval < res) {
			res = f.Interval
		}
	}
	if res == 0 {
		res = defaultTick
	}
	if res < floor {
		res = floor
	}
	return res
}

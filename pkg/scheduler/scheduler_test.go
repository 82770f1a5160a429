package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedrewriter/pkg/content"
	"github.com/umputun/feedrewriter/pkg/domain"
	"github.com/umputun/feedrewriter/pkg/filter"
	"github.com/umputun/feedrewriter/pkg/llm"
	"github.com/umputun/feedrewriter/pkg/repository"
	"github.com/umputun/feedrewriter/pkg/scheduler/mocks"
	"github.com/umputun/feedrewriter/pkg/service"
)

// clock is a settable time source
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) add(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	sched     *Scheduler
	stores    *service.Stores
	clock     *clock
	feeds     map[string][]domain.Entry // entries by feed url
	loader    *mocks.FeedLoaderMock
	fetcher   *mocks.PageFetcherMock
	rewriter  *mocks.RewriterMock
	publisher *mocks.PublisherMock

	mu        sync.Mutex
	published map[int64]domain.Post
}

// newTestEnv makes a scheduler over in-memory sqlite with mocked network collaborators.
// The mocked publisher keeps posts in memory and reports existing titles.
func newTestEnv(t *testing.T, cfg Config, feeds ...domain.FeedConfig) *testEnv {
	t.Helper()
	ctx := context.Background()
	repos, err := repository.NewRepositories(ctx, repository.Config{DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, repos.Close()) })

	env := &testEnv{
		stores:    service.NewStores(repos),
		clock:     &clock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		feeds:     map[string][]domain.Entry{},
		published: map[int64]domain.Post{},
	}
	for i := range feeds {
		require.NoError(t, env.stores.CreateFeed(ctx, &feeds[i]))
	}

	env.loader = &mocks.FeedLoaderMock{
		LoadFunc: func(_ context.Context, url string) (*domain.ParsedFeed, error) {
			entries, ok := env.feeds[url]
			if !ok {
				return nil, fmt.Errorf("unexpected status code 404")
			}
			return &domain.ParsedFeed{Kind: domain.FeedKindRSS, Entries: entries, Attempt: "strict"}, nil
		},
	}
	env.fetcher = &mocks.PageFetcherMock{
		FetchPageFunc: func(context.Context, string) (string, error) {
			return "", errors.New("page not available")
		},
		FetchImageFunc: func(context.Context, string) (*content.Image, error) {
			return &content.Image{Data: []byte("jpeg"), ContentType: "image/jpeg"}, nil
		},
	}
	env.rewriter = &mocks.RewriterMock{
		RewriteFunc: func(_ context.Context, req llm.RewriteRequest) (*domain.RewrittenArticle, error) {
			return &domain.RewrittenArticle{Title: "Rewritten " + req.Title, HTMLBody: "<p>" + req.Body + "</p>"}, nil
		},
		GenerateTagsFunc: func(context.Context, string) ([]string, error) {
			return []string{"news", "go"}, nil
		},
	}
	env.publisher = &mocks.PublisherMock{
		PostExistsFunc: func(_ context.Context, title string) (bool, error) {
			env.mu.Lock()
			defer env.mu.Unlock()
			for _, p := range env.published {
				if p.Title == title {
					return true, nil
				}
			}
			return false, nil
		},
		EnsureCategoryFunc: func(context.Context, string) (int64, error) { return 7, nil },
		CreatePostFunc: func(_ context.Context, post domain.Post) (int64, error) {
			env.mu.Lock()
			defer env.mu.Unlock()
			id := int64(len(env.published) + 1)
			env.published[id] = post
			return id, nil
		},
		AttachImageFunc: func(context.Context, int64, []byte, string, string) error { return nil },
		SetTagsFunc:     func(context.Context, int64, []string) error { return nil },
	}

	env.sched = New(Params{
		Store:     env.stores,
		Loader:    env.loader,
		Fetcher:   env.fetcher,
		Rewriter:  env.rewriter,
		Publisher: env.publisher,
	}, cfg)
	env.sched.now = env.clock.now
	return env
}

func (e *testEnv) posts() []domain.Post {
	e.mu.Lock()
	defer e.mu.Unlock()
	res := make([]domain.Post, 0, len(e.published))
	for i := int64(1); i <= int64(len(e.published)); i++ {
		res = append(res, e.published[i])
	}
	return res
}

func (e *testEnv) journal(t *testing.T) []string {
	t.Helper()
	entries, err := e.stores.GetLogEntries(context.Background(), 1000)
	require.NoError(t, err)
	res := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		res = append(res, string(entries[i].Source)+": "+entries[i].Message)
	}
	return res
}

func journalHas(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func testEntry(n int) domain.Entry {
	return domain.Entry{
		Kind:         domain.FeedKindRSS,
		Title:        fmt.Sprintf("Article %d", n),
		Link:         fmt.Sprintf("https://example.com/article-%d", n),
		Description:  strings.Repeat(fmt.Sprintf("story%d text ", n), 20),
		EnclosureURL: fmt.Sprintf("http://example.com/img-%d.png", n),
	}
}

func testFeeds() []domain.FeedConfig {
	return []domain.FeedConfig{
		{URL: "https://one.example.com/rss", Category: "Tech", Interval: time.Hour, Prompt: "be short"},
		{URL: "https://two.example.com/rss", Category: "Sport", Interval: time.Hour},
	}
}

func defaultConfig() Config {
	return Config{ManualBypassesInterval: true, ManualBypassesPause: true, IgnoreProcessedURLs: true, GenerateTags: true}
}

func TestScheduler_CronTickPublishesOneArticle(t *testing.T) {
	env := newTestEnv(t, defaultConfig(), testFeeds()...)
	env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1), testEntry(2)}
	env.feeds["https://two.example.com/rss"] = []domain.Entry{testEntry(3)}
	ctx := context.Background()

	res, err := env.sched.Tick(ctx, domain.SourceCron)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)
	assert.Equal(t, 1, res.FeedsChecked, "cron tick stops after the first feed which published")
	assert.Empty(t, res.Skipped)
	require.Len(t, env.loader.LoadCalls(), 1)

	posts := env.posts()
	require.Len(t, posts, 1)
	assert.Equal(t, "Rewritten Article 1", posts[0].Title)
	assert.Equal(t, int64(7), posts[0].CategoryID)
	assert.Equal(t, domain.PostMeta{Generated: true, SourceFeed: "https://one.example.com/rss",
		SourceURL: "https://example.com/article-1", FeedNum: 1}, posts[0].Meta)

	rw := env.rewriter.RewriteCalls()
	require.Len(t, rw, 1)
	assert.Equal(t, "Article 1", rw[0].Req.Title)
	assert.Equal(t, "be short", rw[0].Req.Prompt)
	assert.Contains(t, rw[0].Req.Body, "story1 text")

	require.Len(t, env.publisher.EnsureCategoryCalls(), 1)
	assert.Equal(t, "Tech", env.publisher.EnsureCategoryCalls()[0].Name)
	require.Len(t, env.fetcher.FetchImageCalls(), 1)
	assert.Equal(t, "https://example.com/img-1.png", env.fetcher.FetchImageCalls()[0].ImageURL)
	require.Len(t, env.publisher.AttachImageCalls(), 1)
	assert.Equal(t, "rewritten-article-1.png", env.publisher.AttachImageCalls()[0].Filename)
	assert.Equal(t, "Rewritten Article 1", env.publisher.AttachImageCalls()[0].Alt)
	require.Len(t, env.publisher.SetTagsCalls(), 1)
	assert.Equal(t, []string{"news", "go"}, env.publisher.SetTagsCalls()[0].Tags)
	assert.Empty(t, env.fetcher.FetchPageCalls(), "feed text was enough, page not fetched")

	processed, err := env.stores.IsProcessed(ctx, 1, "https://example.com/article-1")
	require.NoError(t, err)
	assert.True(t, processed)

	feeds, err := env.stores.GetFeeds(ctx)
	require.NoError(t, err)
	require.NotNil(t, feeds[0].LastRun)
	assert.True(t, feeds[0].LastRun.Equal(env.clock.now()))
	assert.Nil(t, feeds[1].LastRun)

	lastRun, err := env.stores.GetSetting(ctx, domain.SettingLastCronRun)
	require.NoError(t, err)
	assert.Equal(t, env.clock.now().Format(time.RFC3339), lastRun)

	held, _, err := env.stores.Status(ctx, lockName, env.clock.now())
	require.NoError(t, err)
	assert.False(t, held, "lock released after the run")

	journal := env.journal(t)
	assert.True(t, journalHas(journal, `cron: published "Rewritten Article 1" as post 1`), journal)
}

func TestScheduler_CronTickHonorsIntervals(t *testing.T) {
	env := newTestEnv(t, defaultConfig(), testFeeds()...)
	env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1), testEntry(2)}
	env.feeds["https://two.example.com/rss"] = []domain.Entry{testEntry(3)}
	ctx := context.Background()

	res, err := env.sched.Tick(ctx, domain.SourceCron)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)

	// feed one is not due yet, feed two is
	env.clock.add(10 * time.Minute)
	res, err = env.sched.Tick(ctx, domain.SourceCron)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)
	assert.Equal(t, 1, res.FeedsChecked)
	assert.Equal(t, "Rewritten Article 3", env.posts()[1].Title)

	// nothing is due
	env.clock.add(10 * time.Minute)
	res, err = env.sched.Tick(ctx, domain.SourceCron)
	require.NoError(t, err)
	assert.Zero(t, res.FeedsChecked)
	assert.Zero(t, res.Published)

	// an hour after the first run feed one is due again and continues with the next entry
	env.clock.add(45 * time.Minute)
	res, err = env.sched.Tick(ctx, domain.SourceCron)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)
	assert.Equal(t, "Rewritten Article 2", env.posts()[2].Title)
}

func TestScheduler_LastRunIsCheckStart(t *testing.T) {
	env := newTestEnv(t, defaultConfig(), domain.FeedConfig{URL: "https://one.example.com/rss", Interval: time.Hour})
	env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1), testEntry(2)}
	ctx := context.Background()

	// rewriting takes 30s of clock time
	rewrite := env.rewriter.RewriteFunc
	env.rewriter.RewriteFunc = func(ctx context.Context, req llm.RewriteRequest) (*domain.RewrittenArticle, error) {
		env.clock.add(30 * time.Second)
		return rewrite(ctx, req)
	}

	start := env.clock.now()
	res, err := env.sched.Tick(ctx, domain.SourceCron)
	require.NoError(t, err)
	require.Equal(t, 1, res.Published)

	feeds, err := env.stores.GetFeeds(ctx)
	require.NoError(t, err)
	require.NotNil(t, feeds[0].LastRun)
	assert.True(t, feeds[0].LastRun.Equal(start), "last run %v, check started %v", feeds[0].LastRun, start)

	// next tick fires exactly one interval after the first one started
	env.clock.add(start.Add(time.Hour).Sub(env.clock.now()))
	res, err = env.sched.Tick(ctx, domain.SourceCron)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FeedsChecked, "feed is due on its interval tick")
	assert.Equal(t, 1, res.Published)
	assert.Equal(t, "Rewritten Article 2", env.posts()[1].Title)
}

func TestScheduler_ManualRun(t *testing.T) {
	t.Run("processes every feed and ignores intervals", func(t *testing.T) {
		env := newTestEnv(t, defaultConfig(), testFeeds()...)
		env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1), testEntry(2)}
		env.feeds["https://two.example.com/rss"] = []domain.Entry{testEntry(3)}
		ctx := context.Background()

		res, err := env.sched.RunNow(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.SourceManual, res.Source)
		assert.Equal(t, 2, res.FeedsChecked)
		assert.Equal(t, 2, res.Published)

		env.clock.add(time.Minute)
		res, err = env.sched.RunNow(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, res.FeedsChecked, "intervals bypassed")
		assert.Equal(t, 1, res.Published, "only feed one has a new entry")
		assert.Len(t, env.posts(), 3)
		assert.True(t, journalHas(env.journal(t), "manual: run finished, 2 feeds checked, 1 published"))
	})

	t.Run("interval gate kept when bypass disabled", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.ManualBypassesInterval = false
		env := newTestEnv(t, cfg, testFeeds()...)
		env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1), testEntry(2)}
		env.feeds["https://two.example.com/rss"] = []domain.Entry{testEntry(3)}
		ctx := context.Background()

		res, err := env.sched.RunNow(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Published)

		env.clock.add(time.Minute)
		res, err = env.sched.RunNow(ctx)
		require.NoError(t, err)
		assert.Zero(t, res.FeedsChecked)
	})
}

func TestScheduler_DedupIsIdempotent(t *testing.T) {
	cfg := defaultConfig()
	env := newTestEnv(t, cfg, domain.FeedConfig{URL: "https://one.example.com/rss", Interval: time.Hour})
	env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1)}
	// publisher never reports a title match, only the ledger guards against duplicates
	env.publisher.PostExistsFunc = func(context.Context, string) (bool, error) { return false, nil }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		env.clock.add(2 * time.Minute)
		_, err := env.sched.RunNow(ctx)
		require.NoError(t, err)
	}
	assert.Len(t, env.posts(), 1)
	assert.Len(t, env.rewriter.RewriteCalls(), 1)
	assert.True(t, journalHas(env.journal(t), "already processed https://example.com/article-1"))
}

func TestScheduler_TitleGuard(t *testing.T) {
	cfg := defaultConfig()
	cfg.IgnoreProcessedURLs = false
	env := newTestEnv(t, cfg, domain.FeedConfig{URL: "https://one.example.com/rss", Interval: time.Hour})
	env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1)}
	ctx := context.Background()

	_, err := env.sched.RunNow(ctx)
	require.NoError(t, err)
	env.clock.add(2 * time.Minute)
	res, err := env.sched.RunNow(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Published)
	assert.Len(t, env.posts(), 1)
	assert.True(t, journalHas(env.journal(t), `post with rewritten title "Rewritten Article 1" exists`))
}

func TestScheduler_AtMostOneRun(t *testing.T) {
	env := newTestEnv(t, defaultConfig(), domain.FeedConfig{URL: "https://one.example.com/rss", Interval: time.Hour})
	env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1)}
	ctx := context.Background()

	started, release := make(chan struct{}), make(chan struct{})
	rewrite := env.rewriter.RewriteFunc
	env.rewriter.RewriteFunc = func(ctx context.Context, req llm.RewriteRequest) (*domain.RewrittenArticle, error) {
		close(started)
		<-release
		return rewrite(ctx, req)
	}

	type result struct {
		res domain.RunResult
		err error
	}
	first := make(chan result, 1)
	go func() {
		res, err := env.sched.Tick(ctx, domain.SourceCron)
		first <- result{res, err}
	}()

	<-started
	res, err := env.sched.Tick(ctx, domain.SourceManual)
	require.NoError(t, err)
	assert.Equal(t, "locked", res.Skipped)
	assert.Zero(t, res.FeedsChecked)

	close(release)
	r := <-first
	require.NoError(t, r.err)
	assert.Equal(t, 1, r.res.Published)
	assert.Len(t, env.loader.LoadCalls(), 1, "exactly one processing pass")
	assert.True(t, journalHas(env.journal(t), "manual: already running, skip"))
}

func TestScheduler_LockExpiry(t *testing.T) {
	env := newTestEnv(t, Config{LockTTL: 25 * time.Minute}, domain.FeedConfig{URL: "https://one.example.com/rss", Interval: time.Hour})
	env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1)}
	ctx := context.Background()

	// a crashed run left the lock behind
	ok, err := env.stores.Acquire(ctx, lockName, env.clock.now(), 25*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	env.clock.add(time.Minute)
	res, err := env.sched.Tick(ctx, domain.SourceCron)
	require.NoError(t, err)
	assert.Equal(t, "locked", res.Skipped)

	env.clock.add(25 * time.Minute)
	res, err = env.sched.Tick(ctx, domain.SourceCron)
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, 1, res.Published)
}

func TestScheduler_OverrunKeepsTakenOverLock(t *testing.T) {
	env := newTestEnv(t, Config{LockTTL: 25 * time.Minute}, domain.FeedConfig{URL: "https://one.example.com/rss", Interval: time.Hour})
	env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1)}
	ctx := context.Background()

	// the run outlives its lock and another process takes the lock over meanwhile
	rewrite := env.rewriter.RewriteFunc
	env.rewriter.RewriteFunc = func(ctx context.Context, req llm.RewriteRequest) (*domain.RewrittenArticle, error) {
		env.clock.add(30 * time.Minute)
		ok, err := env.stores.Acquire(ctx, lockName, env.clock.now(), 25*time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		return rewrite(ctx, req)
	}

	res, err := env.sched.Tick(ctx, domain.SourceCron)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)

	held, _, err := env.stores.Status(ctx, lockName, env.clock.now())
	require.NoError(t, err)
	assert.True(t, held, "lock of the other holder kept")
	assert.True(t, journalHas(env.journal(t), "run lock expired during the run and was taken over"))

	res, err = env.sched.Tick(ctx, domain.SourceManual)
	require.NoError(t, err)
	assert.Equal(t, "locked", res.Skipped)
}

func TestScheduler_ClearLock(t *testing.T) {
	env := newTestEnv(t, defaultConfig(), domain.FeedConfig{URL: "https://one.example.com/rss", Interval: time.Hour})
	env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1)}
	ctx := context.Background()

	_, err := env.stores.Acquire(ctx, lockName, env.clock.now(), time.Hour)
	require.NoError(t, err)
	require.NoError(t, env.sched.ClearLock(ctx))

	res, err := env.sched.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)
}

func TestScheduler_Pause(t *testing.T) {
	ctx := context.Background()

	t.Run("cron skipped, manual bypasses", func(t *testing.T) {
		env := newTestEnv(t, defaultConfig(), testFeeds()...)
		env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1)}
		env.feeds["https://two.example.com/rss"] = []domain.Entry{testEntry(2)}

		require.NoError(t, env.sched.Pause(ctx))
		paused, err := env.sched.Paused(ctx)
		require.NoError(t, err)
		assert.True(t, paused)

		res, err := env.sched.Tick(ctx, domain.SourceCron)
		require.NoError(t, err)
		assert.Equal(t, "paused", res.Skipped)
		assert.Empty(t, env.loader.LoadCalls())

		res, err = env.sched.RunNow(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Published)

		require.NoError(t, env.sched.Resume(ctx))
		env.clock.add(2 * time.Hour)
		res, err = env.sched.Tick(ctx, domain.SourceCron)
		require.NoError(t, err)
		assert.Empty(t, res.Skipped)
	})

	t.Run("manual skipped when bypass disabled", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.ManualBypassesPause = false
		env := newTestEnv(t, cfg, testFeeds()...)
		require.NoError(t, env.sched.Pause(ctx))

		res, err := env.sched.RunNow(ctx)
		require.NoError(t, err)
		assert.Equal(t, "paused", res.Skipped)
		assert.Empty(t, env.loader.LoadCalls())
		assert.True(t, journalHas(env.journal(t), "manual: paused, skip"))
	})
}

func TestScheduler_KeywordFilter(t *testing.T) {
	env := newTestEnv(t, defaultConfig(), domain.FeedConfig{URL: "https://one.example.com/rss", Interval: time.Hour})
	env.sched.Filter = filter.New("storm\nflood", "politics, election")

	both := testEntry(1)
	both.Title = "Storm politics"
	includeOnly := testEntry(2)
	includeOnly.Title = "Storm hits the city"
	neither := testEntry(3)
	env.feeds["https://one.example.com/rss"] = []domain.Entry{both, neither, includeOnly}

	res, err := env.sched.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)

	posts := env.posts()
	require.Len(t, posts, 1)
	assert.Equal(t, "Rewritten Storm hits the city", posts[0].Title)

	journal := env.journal(t)
	assert.True(t, journalHas(journal, `skip "Storm politics": excluded keyword: politics`), journal)
	assert.True(t, journalHas(journal, `skip "Article 3": no include keyword matched`), journal)
}

func TestScheduler_SkipsAndFailures(t *testing.T) {
	cfg := defaultConfig()
	cfg.IgnoreNoImage = true
	env := newTestEnv(t, cfg, domain.FeedConfig{URL: "https://one.example.com/rss", Interval: time.Hour})

	noImage := testEntry(1)
	noImage.EnclosureURL = ""
	noContent := testEntry(2)
	noContent.Description = ""
	rewriteFails := testEntry(3)
	noLink := testEntry(4)
	noLink.Link = ""
	good := testEntry(5)
	env.feeds["https://one.example.com/rss"] = []domain.Entry{noImage, noContent, rewriteFails, noLink, good}

	rewrite := env.rewriter.RewriteFunc
	env.rewriter.RewriteFunc = func(ctx context.Context, req llm.RewriteRequest) (*domain.RewrittenArticle, error) {
		if req.Title == "Article 3" {
			return nil, llm.ErrEmptyResponse
		}
		return rewrite(ctx, req)
	}
	env.rewriter.GenerateTagsFunc = func(context.Context, string) ([]string, error) {
		return nil, errors.New("tags service down")
	}
	env.fetcher.FetchImageFunc = func(context.Context, string) (*content.Image, error) {
		return nil, content.ErrImageTooLarge
	}

	res, err := env.sched.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)
	require.Len(t, env.posts(), 1)
	assert.Equal(t, "Rewritten Article 5", env.posts()[0].Title)
	assert.Empty(t, env.publisher.AttachImageCalls(), "image download failed")
	assert.Empty(t, env.publisher.SetTagsCalls(), "no tags generated")

	journal := env.journal(t)
	assert.True(t, journalHas(journal, `skip "Article 1": no image`), journal)
	assert.True(t, journalHas(journal, `skip "Article 2": no content`), journal)
	assert.True(t, journalHas(journal, `failed "Article 3": rewrite: empty llm response`), journal)
	assert.True(t, journalHas(journal, `skip "Article 4": no title or link`), journal)
	assert.True(t, journalHas(journal, "published without image"), journal)
	assert.True(t, journalHas(journal, "can't generate tags"), journal)

	// entries 1 and 2 fetched the page once each
	assert.Len(t, env.fetcher.FetchPageCalls(), 2)
}

func TestScheduler_PageFallback(t *testing.T) {
	env := newTestEnv(t, defaultConfig(), domain.FeedConfig{URL: "https://one.example.com/rss", Interval: time.Hour})
	research := &mocks.ResearcherMock{
		CollectFunc: func(context.Context, string, string) (string, error) {
			return "Source: https://other.example.org\nmore facts", nil
		},
	}
	env.sched.Research = research

	entry := domain.Entry{Title: "Short one", Link: "https://news.example.com/short", Description: "teaser only"}
	env.feeds["https://one.example.com/rss"] = []domain.Entry{entry}

	page := `<html><head><meta property="og:image" content="//cdn.example.com/pic.webp"></head><body>
		<article class="article-content"><p>` + strings.Repeat("Full article paragraph text. ", 12) + `</p></article></body></html>`
	env.fetcher.FetchPageFunc = func(_ context.Context, pageURL string) (string, error) {
		assert.Equal(t, "https://news.example.com/short", pageURL)
		return page, nil
	}

	res, err := env.sched.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)

	assert.Len(t, env.fetcher.FetchPageCalls(), 1, "page fetched once for image, content and research")
	require.Len(t, env.fetcher.FetchImageCalls(), 1)
	assert.Equal(t, "https://cdn.example.com/pic.webp", env.fetcher.FetchImageCalls()[0].ImageURL)
	assert.Equal(t, "rewritten-short-one.webp", env.publisher.AttachImageCalls()[0].Filename)

	req := env.rewriter.RewriteCalls()[0].Req
	assert.Contains(t, req.Body, "Full article paragraph text.")
	assert.Equal(t, "Source: https://other.example.org\nmore facts", req.Research)
	require.Len(t, research.CollectCalls(), 1)
	assert.Equal(t, page, research.CollectCalls()[0].Page)
}

func TestScheduler_FeedErrorsDoNotStopRun(t *testing.T) {
	env := newTestEnv(t, defaultConfig(), testFeeds()...)
	env.feeds["https://two.example.com/rss"] = []domain.Entry{testEntry(1)}

	res, err := env.sched.Tick(context.Background(), domain.SourceCron)
	require.NoError(t, err)
	assert.Equal(t, 2, res.FeedsChecked)
	assert.Equal(t, 1, res.Published)
	assert.True(t, journalHas(env.journal(t), "feed #1 https://one.example.com/rss skipped: unexpected status code 404"))
}

func TestScheduler_PanicReleasesLock(t *testing.T) {
	env := newTestEnv(t, defaultConfig(), domain.FeedConfig{URL: "https://one.example.com/rss", Interval: time.Hour})
	env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1)}
	env.rewriter.RewriteFunc = func(context.Context, llm.RewriteRequest) (*domain.RewrittenArticle, error) {
		panic("boom")
	}
	ctx := context.Background()

	_, err := env.sched.Tick(ctx, domain.SourceCron)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run panicked: boom")

	held, _, err := env.stores.Status(ctx, lockName, env.clock.now())
	require.NoError(t, err)
	assert.False(t, held)
	assert.True(t, journalHas(env.journal(t), "[ERROR] run panicked: boom"))
}

func TestScheduler_Reschedule(t *testing.T) {
	ctx := context.Background()

	t.Run("shortest feed interval", func(t *testing.T) {
		env := newTestEnv(t, defaultConfig(),
			domain.FeedConfig{URL: "https://one.example.com/rss", Interval: 30 * time.Minute},
			domain.FeedConfig{URL: "https://two.example.com/rss", Interval: 10 * time.Minute})
		require.NoError(t, env.sched.Reschedule(ctx))
		assert.Equal(t, 10*time.Minute, env.sched.state.Interval())
		assert.Len(t, env.sched.resetCh, 1, "timer reset requested")

		// unchanged interval doesn't request another reset
		<-env.sched.resetCh
		require.NoError(t, env.sched.Reschedule(ctx))
		assert.Empty(t, env.sched.resetCh)
	})

	t.Run("floor and no feeds", func(t *testing.T) {
		env := newTestEnv(t, Config{MinTick: time.Minute}, domain.FeedConfig{URL: "https://one.example.com/rss", Interval: 10 * time.Second})
		require.NoError(t, env.sched.Reschedule(ctx))
		assert.Equal(t, time.Minute, env.sched.state.Interval())

		empty := newTestEnv(t, Config{})
		require.NoError(t, empty.sched.Reschedule(ctx))
		assert.Equal(t, defaultTick, empty.sched.state.Interval())
	})

	t.Run("nested call ignored", func(t *testing.T) {
		env := newTestEnv(t, defaultConfig(), domain.FeedConfig{URL: "https://one.example.com/rss", Interval: 5 * time.Minute})
		require.True(t, env.sched.state.beginReschedule())
		require.NoError(t, env.sched.Reschedule(ctx))
		assert.Equal(t, defaultTick, env.sched.state.Interval(), "interval untouched while rescheduling")
		env.sched.state.endReschedule()
		require.NoError(t, env.sched.Reschedule(ctx))
		assert.Equal(t, 5*time.Minute, env.sched.state.Interval())
	})
}

func TestScheduler_StartStop(t *testing.T) {
	cfg := defaultConfig()
	cfg.RunOnStart = true
	env := newTestEnv(t, cfg, domain.FeedConfig{URL: "https://one.example.com/rss", Interval: time.Hour})
	env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1)}

	env.sched.Start(context.Background())
	require.Eventually(t, func() bool { return len(env.posts()) == 1 }, 5*time.Second, 10*time.Millisecond)
	env.sched.Stop()

	assert.Equal(t, time.Hour, env.sched.state.Interval())
	assert.Equal(t, env.clock.now().Add(time.Hour), env.sched.state.NextTick())
}

func TestScheduler_Status(t *testing.T) {
	env := newTestEnv(t, defaultConfig(), testFeeds()...)
	env.feeds["https://one.example.com/rss"] = []domain.Entry{testEntry(1)}
	ctx := context.Background()

	st, err := env.sched.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StateActive, st.State)
	assert.False(t, st.LockHeld)
	assert.Empty(t, st.LastCronRun)
	assert.Len(t, st.Feeds, 2)

	_, err = env.sched.Tick(ctx, domain.SourceCron)
	require.NoError(t, err)
	require.NoError(t, env.sched.Pause(ctx))
	_, err = env.stores.Acquire(ctx, lockName, env.clock.now(), time.Minute)
	require.NoError(t, err)

	st, err = env.sched.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePaused, st.State)
	assert.True(t, st.LockHeld)
	assert.True(t, st.LockExpires.Equal(env.clock.now().Add(time.Minute)))
	assert.Equal(t, env.clock.now(), st.LastTick)
	assert.NotEmpty(t, st.LastCronRun)
	require.NotNil(t, st.Feeds[0].LastRun)
}

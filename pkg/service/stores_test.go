package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedrewriter/pkg/config"
	"github.com/umputun/feedrewriter/pkg/domain"
	"github.com/umputun/feedrewriter/pkg/repository"
)

func setupRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	repos, err := repository.NewRepositories(context.Background(),
		repository.Config{DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, repos.Close()) })
	return repos
}

func TestStores_SeedFeeds(t *testing.T) {
	ctx := context.Background()
	stores := NewStores(setupRepos(t))

	cfgFeeds := []config.Feed{
		{URL: "https://example.com/a.xml", Category: "Tech", Interval: time.Hour, Prompt: "be brief"},
		{URL: "https://example.com/b.xml", Category: "Sport", Interval: 30 * time.Minute},
	}

	n, err := stores.SeedFeeds(ctx, cfgFeeds)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	feeds, err := stores.GetFeeds(ctx)
	require.NoError(t, err)
	require.Len(t, feeds, 2)
	assert.Equal(t, 1, feeds[0].Position)
	assert.Equal(t, "https://example.com/a.xml", feeds[0].URL)
	assert.Equal(t, "be brief", feeds[0].Prompt)
	assert.Equal(t, time.Hour, feeds[0].Interval)
	assert.Equal(t, 2, feeds[1].Position)
	assert.Equal(t, "Sport", feeds[1].Category)
	assert.Nil(t, feeds[1].LastRun)

	// second start keeps stored feeds
	n, err = stores.SeedFeeds(ctx, []config.Feed{{URL: "https://example.com/c.xml", Interval: time.Hour}})
	require.NoError(t, err)
	assert.Zero(t, n)
	feeds, err = stores.GetFeeds(ctx)
	require.NoError(t, err)
	assert.Len(t, feeds, 2)
}

func TestStores_Delegation(t *testing.T) {
	ctx := context.Background()
	stores := NewStores(setupRepos(t))
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	feed := &domain.FeedConfig{URL: "https://example.com/rss", Interval: time.Hour}
	require.NoError(t, stores.CreateFeed(ctx, feed))
	require.NoError(t, stores.UpdateFeedLastRun(ctx, feed.ID, now))
	got, err := stores.GetFeed(ctx, feed.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastRun)
	assert.True(t, got.LastRun.Equal(now))

	got.Category = "News"
	require.NoError(t, stores.UpdateFeed(ctx, *got))

	require.NoError(t, stores.SetSetting(ctx, domain.SettingCronStatus, string(domain.StatePaused)))
	val, err := stores.GetSetting(ctx, domain.SettingCronStatus)
	require.NoError(t, err)
	assert.Equal(t, "paused", val)

	ok, err := stores.Acquire(ctx, "run", now, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	held, expires, err := stores.Status(ctx, "run", now)
	require.NoError(t, err)
	assert.True(t, held)
	assert.True(t, expires.Equal(now.Add(time.Minute)))
	released, err := stores.Release(ctx, "run", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, released)
	_, err = stores.Acquire(ctx, "run", now, time.Minute)
	require.NoError(t, err)
	require.NoError(t, stores.ForceRelease(ctx, "run"))
	held, _, err = stores.Status(ctx, "run", now)
	require.NoError(t, err)
	assert.False(t, held)

	require.NoError(t, stores.MarkProcessed(ctx, feed.ID, "https://example.com/a"))
	processed, err := stores.IsProcessed(ctx, feed.ID, "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, processed)
	cnt, err := stores.CountProcessed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cnt)
	require.NoError(t, stores.ClearProcessed(ctx, feed.ID))
	cnt, err = stores.CountProcessed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Zero(t, cnt)
	require.NoError(t, stores.MarkProcessed(ctx, feed.ID, "https://example.com/a"))

	require.NoError(t, stores.AddLogEntry(ctx, domain.LogEntry{Timestamp: now, Source: domain.SourceCron, Message: "hello"}))
	entries, err := stores.GetLogEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Message)
	require.NoError(t, stores.ClearLogEntries(ctx))

	require.NoError(t, stores.SetCache(ctx, "k", "v", now.Add(time.Minute)))
	v, found, err := stores.GetCache(ctx, "k", now)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)
	require.NoError(t, stores.Cleanup(ctx, now.Add(time.Hour)))
	_, found, err = stores.GetCache(ctx, "k", now)
	require.NoError(t, err)
	assert.False(t, found, "expired record removed by cleanup")

	posts, err := stores.ListPosts(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, posts)

	require.NoError(t, stores.DeleteFeed(ctx, feed.ID))
	feeds, err := stores.GetFeeds(ctx)
	require.NoError(t, err)
	assert.Empty(t, feeds)
}

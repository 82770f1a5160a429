package content

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePages struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *fakePages) FetchPage(_ context.Context, pageURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pageURL)
	page, ok := f.pages[pageURL]
	if !ok {
		return "", errors.New("not found")
	}
	return page, nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	exp  map[string]time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}, exp: map[string]time.Time{}}
}

func (c *fakeCache) GetCache(_ context.Context, key string, now time.Time) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok || !c.exp[key].After(now) {
		return "", false, nil
	}
	return v, true, nil
}

func (c *fakeCache) SetCache(_ context.Context, key, value string, expires time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.exp[key] = expires
	return nil
}

func TestResearcher_Collect(t *testing.T) {
	article := `<html><body><article>
		<a href="#top">top</a>
		<a href="mailto:editor@news.example.com">mail</a>
		<a href="javascript:void(0)">js</a>
		<a href="/local">same site relative</a>
		<a href="https://blog.example.com/other">same registrable domain</a>
		<a href="https://www.facebook.com/sharer">facebook</a>
		<a href="https://other.org/privacy">Privacy policy</a>
		<a href="https://other.org/story#section">other story</a>
		<a href="https://other.org/story">other story again</a>
		<a href="https://missing.net/page">broken link</a>
		<a href="https://third.io/report">report</a>
		<a href="https://fourth.io/extra">extra beyond limit</a>
	</article></body></html>`

	fetcher := &fakePages{pages: map[string]string{
		"https://other.org/story":  `<div class="entry-content"><p>` + longText + `</p></div>`,
		"https://third.io/report":  `<div class="entry-content"><p>Report ` + longText + `</p></div>`,
		"https://fourth.io/extra":  `<div class="entry-content"><p>` + longText + `</p></div>`,
	}}
	cache := newFakeCache()
	r := NewResearcher(fetcher, NewExtractor(ExtractorOpts{}), cache, ResearcherOpts{MaxLinks: 3, MaxExcerpt: 50, CacheTTL: time.Hour})
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	res, err := r.Collect(context.Background(), "https://news.example.com/a", article)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"https://other.org/story", "https://missing.net/page", "https://third.io/report"}, fetcher.calls)
	assert.Contains(t, res, "Source: https://other.org/story\n")
	assert.Contains(t, res, "Source: https://third.io/report\nReport ")
	assert.NotContains(t, res, "missing.net")
	for _, block := range strings.Split(res, "\n\n") {
		lines := strings.SplitN(block, "\n", 2)
		require.Len(t, lines, 2)
		assert.LessOrEqual(t, len([]rune(lines[1])), 50)
	}

	// second call served from cache
	fetcher.calls = nil
	cached, err := r.Collect(context.Background(), "https://news.example.com/a", article)
	require.NoError(t, err)
	assert.Equal(t, res, cached)
	assert.Empty(t, fetcher.calls)

	// expired cache refetches
	now = now.Add(2 * time.Hour)
	_, err = r.Collect(context.Background(), "https://news.example.com/a", article)
	require.NoError(t, err)
	assert.NotEmpty(t, fetcher.calls)
}

func TestResearcher_NoLinks(t *testing.T) {
	fetcher := &fakePages{}
	r := NewResearcher(fetcher, NewExtractor(ExtractorOpts{}), nil, ResearcherOpts{})
	res, err := r.Collect(context.Background(), "https://news.example.com/a", `<p><a href="/x">internal</a></p>`)
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Empty(t, fetcher.calls)
}

func TestRegistrableDomain(t *testing.T) {
	assert.Equal(t, "example.co.uk", registrableDomain("news.example.co.uk"))
	assert.Equal(t, "example.com", registrableDomain("WWW.Example.com"))
	assert.Equal(t, "localhost", registrableDomain("localhost"))
}

package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedrewriter/pkg/domain"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
	<channel>
		<title>Test Feed</title>
		<link>https://example.com</link>
		<item>
			<title>Test Article 1</title>
			<link>https://example.com/article1</link>
			<description>Article 1 description</description>
		</item>
	</channel>
</rss>`

func TestFetcher_Fetch(t *testing.T) {
	t.Run("sends feed headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			assert.Contains(t, r.Header.Get("Accept"), "application/rss+xml")
			assert.NotEmpty(t, r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(sampleRSS))
		}))
		defer server.Close()

		fetcher := NewFetcher(5*time.Second, "test-agent")
		body, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, sampleRSS, string(body))
	})

	t.Run("default user agent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "Mozilla/5.0"))
			_, _ = w.Write([]byte(sampleRSS))
		}))
		defer server.Close()

		_, err := NewFetcher(5*time.Second, "").Fetch(context.Background(), server.URL)
		require.NoError(t, err)
	})

	t.Run("http error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewFetcher(5*time.Second, "").Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status code 404")
	})

	t.Run("empty body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		_, err := NewFetcher(5*time.Second, "").Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty response")
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(sampleRSS))
		}))
		defer server.Close()

		_, err := NewFetcher(50*time.Millisecond, "").Fetch(context.Background(), server.URL)
		require.Error(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewFetcher(time.Second, "").Fetch(ctx, "http://127.0.0.1:1/feed")
		require.Error(t, err)
	})
}

func TestLoader_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			_, _ = w.Write([]byte("not a feed"))
			return
		}
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	loader := NewLoader(NewFetcher(5*time.Second, ""), NewParser())

	parsed, err := loader.Load(context.Background(), server.URL+"/rss")
	require.NoError(t, err)
	assert.Equal(t, domain.FeedKindRSS, parsed.Kind)
	assert.Equal(t, "Test Feed", parsed.Title)
	require.Len(t, parsed.Entries, 1)
	assert.Equal(t, "https://example.com/article1", parsed.Entries[0].Link)

	_, err = loader.Load(context.Background(), server.URL+"/bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse feed")
}

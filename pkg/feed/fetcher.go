package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/umputun/feedrewriter/pkg/domain"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	maxFeedSize      = 10 << 20
)

// Fetcher downloads raw feed payloads
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a feed fetcher with the given timeout and user agent
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
	}
}

// Fetch retrieves feed body from url
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	addFeedHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch feed %s: unexpected status code %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", url, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("fetch feed %s: empty response", url)
	}
	return body, nil
}

// Loader fetches and parses feeds
type Loader struct {
	fetcher *Fetcher
	parser  *Parser
}

// NewLoader makes a loader from fetcher and parser
func NewLoader(fetcher *Fetcher, parser *Parser) *Loader {
	return &Loader{fetcher: fetcher, parser: parser}
}

// Load fetches url and parses the payload
func (l *Loader) Load(ctx context.Context, url string) (*domain.ParsedFeed, error) {
	body, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	parsed, err := l.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}
	return parsed, nil
}

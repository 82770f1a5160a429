package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"
)

// PageFetcher retrieves html of a page
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (string, error)
}

// Cache stores research results with expiration
type Cache interface {
	GetCache(ctx context.Context, key string, now time.Time) (string, bool, error)
	SetCache(ctx context.Context, key, value string, expires time.Time) error
}

var (
	socialHosts = []string{"facebook.com", "twitter.com", "x.com", "instagram.com", "linkedin.com",
		"youtube.com", "pinterest.com", "tiktok.com", "reddit.com", "t.me", "wa.me", "whatsapp.com"}
	boilerplateLinkRe = regexp.MustCompile(`(?i)\b(privacy|terms|login|log in|sign in|sign up|register|subscribe|share|cookie|contact|advertise|about us)\b`)
)

const researchParallel = 3

// ResearcherOpts configures Researcher
type ResearcherOpts struct {
	MaxLinks   int
	MaxExcerpt int
	CacheTTL   time.Duration
}

// Researcher collects excerpts of outbound links of an article to enrich the rewrite prompt
type Researcher struct {
	fetcher   PageFetcher
	extractor *Extractor
	cache     Cache
	opts      ResearcherOpts
	now       func() time.Time
}

// NewResearcher creates a researcher, cache may be nil
func NewResearcher(fetcher PageFetcher, extractor *Extractor, cache Cache, opts ResearcherOpts) *Researcher {
	if opts.MaxLinks <= 0 {
		opts.MaxLinks = 3
	}
	if opts.MaxExcerpt <= 0 {
		opts.MaxExcerpt = 1000
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	return &Researcher{fetcher: fetcher, extractor: extractor, cache: cache, opts: opts, now: time.Now}
}

// Collect returns excerpts of up to MaxLinks external pages linked from the article.
// Empty result with nil error means nothing useful was found.
func (r *Researcher) Collect(ctx context.Context, articleURL, page string) (string, error) {
	key := cacheKey(articleURL)
	if r.cache != nil {
		if v, ok, err := r.cache.GetCache(ctx, key, r.now()); err != nil {
			lgr.Printf("[WARN] research cache read for %s: %v", articleURL, err)
		} else if ok {
			return v, nil
		}
	}

	links, err := r.links(articleURL, page)
	if err != nil {
		return "", err
	}
	if len(links) == 0 {
		return "", nil
	}

	excerpts := make([]string, len(links))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(researchParallel)
	for i, link := range links {
		g.Go(func() error {
			html, ferr := r.fetcher.FetchPage(gctx, link)
			if ferr != nil {
				lgr.Printf("[DEBUG] research fetch %s: %v", link, ferr)
				return nil // one broken link doesn't spoil the others
			}
			if text := truncateRunes(r.extractor.FromHTML(html, link), r.opts.MaxExcerpt); text != "" {
				excerpts[i] = fmt.Sprintf("Source: %s\n%s", link, text)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("collect research: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("collect research: %w", err)
	}

	var parts []string
	for _, e := range excerpts {
		if e != "" {
			parts = append(parts, e)
		}
	}
	res := strings.Join(parts, "\n\n")
	if res != "" && r.cache != nil {
		if err := r.cache.SetCache(ctx, key, res, r.now().Add(r.opts.CacheTTL)); err != nil {
			lgr.Printf("[WARN] research cache write for %s: %v", articleURL, err)
		}
	}
	return res, nil
}

// links picks outbound links worth reading, skipping same-site, social and boilerplate ones
func (r *Researcher) links(articleURL, page string) ([]string, error) {
	base, err := url.Parse(articleURL)
	if err != nil {
		return nil, fmt.Errorf("parse article url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse article html: %w", err)
	}
	own := registrableDomain(base.Hostname())

	seen := map[string]bool{}
	var res []string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return true
		}
		u, perr := url.Parse(href)
		if perr != nil {
			return true
		}
		u = base.ResolveReference(u)
		if u.Scheme != "http" && u.Scheme != "https" {
			return true // mailto, javascript, tel
		}
		host := strings.ToLower(u.Hostname())
		if host == "" || registrableDomain(host) == own || isSocial(host) {
			return true
		}
		if boilerplateLinkRe.MatchString(a.Text()) {
			return true
		}
		u.Fragment = ""
		link := u.String()
		if seen[link] {
			return true
		}
		seen[link] = true
		res = append(res, link)
		return len(res) < r.opts.MaxLinks
	})
	return res, nil
}

func registrableDomain(host string) string {
	d, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		return strings.ToLower(host)
	}
	return d
}

func isSocial(host string) bool {
	for _, s := range socialHosts {
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}

func cacheKey(articleURL string) string {
	sum := sha256.Sum256([]byte(articleURL))
	return "research:" + hex.EncodeToString(sum[:])
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

package content

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"
	"github.com/markusmobius/go-trafilatura"

	"github.com/umputun/feedrewriter/pkg/domain"
)

// ErrNoContent is returned when no strategy produced article text
var ErrNoContent = errors.New("no content found")

const longParagraph = 100

// ExtractorOpts configures Extractor
type ExtractorOpts struct {
	MinTextLength int    // feed text shorter than this is not enough
	Trafilatura   bool   // use trafilatura as the final fallback for pages
	Sites         *Sites // site-specific strategies, DefaultSites if nil
}

// Extractor produces article body text from feed entries and article pages
// with a waterfall of strategies
type Extractor struct {
	minText     int
	trafilatura bool
	sites       *Sites
}

// NewExtractor creates a content extractor
func NewExtractor(opts ExtractorOpts) *Extractor {
	if opts.Sites == nil {
		opts.Sites = DefaultSites()
	}
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = 100
	}
	return &Extractor{minText: opts.MinTextLength, trafilatura: opts.Trafilatura, sites: opts.Sites}
}

// Enough checks if text is long enough to be used without fetching the article page
func (e *Extractor) Enough(text string) bool {
	return runeLen(text) >= e.minText
}

// FromEntry returns cleaned text of content:encoded or description, whichever is long
// enough first. If neither is, the longer of them is returned and Enough reports false.
func (e *Extractor) FromEntry(entry domain.Entry) string {
	var best string
	for _, raw := range []string{entry.ContentEncoded, entry.Description} {
		text := RemoveBoilerplate(StripHTML(raw))
		if e.Enough(text) {
			return text
		}
		if runeLen(text) > runeLen(best) {
			best = text
		}
	}
	return best
}

// FromHTML extracts article text from the page html. Strategies in order: site specific,
// generic containers, long paragraphs, trafilatura. Empty string means nothing found.
func (e *Extractor) FromHTML(page, pageURL string) string {
	if strings.TrimSpace(page) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		lgr.Printf("[WARN] can't parse html of %s: %v", pageURL, err)
		return ""
	}
	doc.Find("script, style, noscript").Remove()

	if st := e.sites.Lookup(hostOf(pageURL)); st != nil {
		if text := RemoveBoilerplate(st.Extract(doc)); text != "" {
			return text
		}
		lgr.Printf("[DEBUG] site strategy found nothing for %s", pageURL)
	}

	if text := RemoveBoilerplate(genericStrategy.Extract(doc)); text != "" {
		return text
	}

	if text := RemoveBoilerplate(longParagraphs(doc)); text != "" {
		return text
	}

	if !e.trafilatura {
		return ""
	}
	text, err := extractTrafilatura(page, pageURL)
	if err != nil {
		lgr.Printf("[DEBUG] trafilatura failed for %s: %v", pageURL, err)
		return ""
	}
	return RemoveBoilerplate(text)
}

// longParagraphs joins every paragraph longer than longParagraph characters
func longParagraphs(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := normalizeSpace(p.Text()); runeLen(text) > longParagraph {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

// extractTrafilatura runs readability-style extraction on the whole page
func extractTrafilatura(page, pageURL string) (string, error) {
	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   false,
		IncludeImages:   false,
		IncludeLinks:    false,
		Deduplicate:     true,
	}
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(page), opts)
	if err != nil {
		return "", fmt.Errorf("extract content: %w", err)
	}
	if result == nil || strings.TrimSpace(result.ContentText) == "" {
		return "", ErrNoContent
	}
	return normalizeSpace(result.ContentText), nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

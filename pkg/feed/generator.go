package feed

import (
	"encoding/xml"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/umputun/feedrewriter/pkg/domain"
)

// Generator creates RSS feeds of rewritten posts and OPML of configured sources
type Generator struct {
	baseURL string
	now     func() time.Time
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// GenerateRSS creates an RSS 2.0 feed from published posts, optionally limited to one category
func (g *Generator) GenerateRSS(posts []domain.PublishedPost, category string) (string, error) {
	title := "Feed Rewriter - All Posts"
	selfLink := g.baseURL + "/rss"
	if category != "" {
		title = "Feed Rewriter - " + category
		selfLink = g.baseURL + "/rss?category=" + category
	}

	rssItems := make([]*RSSItem, 0, len(posts))
	for _, post := range posts {
		if category != "" && !strings.EqualFold(post.Category, category) {
			continue
		}
		rssItems = append(rssItems, g.convertToRSSItem(post))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         title,
			Link:          g.baseURL + "/",
			Description:   "Articles rewritten from configured source feeds",
			AtomLink:      &AtomLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: g.now().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}
	return xml.Header + string(output), nil
}

// convertToRSSItem converts a published post to an RSS item
func (g *Generator) convertToRSSItem(post domain.PublishedPost) *RSSItem {
	link := fmt.Sprintf("%s/api/v1/posts/%d", g.baseURL, post.ID)
	item := &RSSItem{
		Title:       post.Title,
		Link:        link,
		GUID:        &RSSGUID{Value: fmt.Sprintf("post-%d", post.ID)},
		Description: post.HTMLBody,
		PubDate:     post.PublishedAt.Format(time.RFC1123Z),
		Categories:  append([]string{}, post.Tags...),
	}
	if post.Category != "" {
		item.Categories = append([]string{post.Category}, item.Categories...)
	}
	if post.ImagePath != "" {
		ctype := mime.TypeByExtension(filepath.Ext(post.ImagePath))
		if ctype == "" {
			ctype = "image/jpeg"
		}
		item.Enclosure = &RSSEnclosure{URL: g.baseURL + "/images/" + filepath.Base(post.ImagePath), Type: ctype}
	}
	return item
}

// GenerateOPML creates an OPML file with configured source feeds
func (g *Generator) GenerateOPML(feeds []domain.FeedConfig) (string, error) {
	type outline struct {
		XMLName  xml.Name `xml:"outline"`
		Text     string   `xml:"text,attr"`
		Type     string   `xml:"type,attr"`
		XMLUrl   string   `xml:"xmlUrl,attr"`
		Category string   `xml:"category,attr,omitempty"`
	}

	type body struct {
		XMLName  xml.Name  `xml:"body"`
		Outlines []outline `xml:"outline"`
	}

	type head struct {
		XMLName     xml.Name `xml:"head"`
		Title       string   `xml:"title"`
		DateCreated string   `xml:"dateCreated"`
	}

	type opml struct {
		XMLName xml.Name `xml:"opml"`
		Version string   `xml:"version,attr"`
		Head    head     `xml:"head"`
		Body    body     `xml:"body"`
	}

	outlines := make([]outline, 0, len(feeds))
	for _, f := range feeds {
		outlines = append(outlines, outline{Text: f.URL, Type: "rss", XMLUrl: f.URL, Category: f.Category})
	}

	doc := opml{
		Version: "2.0",
		Head:    head{Title: "Feed Rewriter Sources", DateCreated: g.now().Format(time.RFC1123Z)},
		Body:    body{Outlines: outlines},
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal OPML: %w", err)
	}
	return xml.Header + string(output), nil
}

package content

import (
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Strategy extracts article text from pages of particular sites
type Strategy interface {
	Match(host string) bool
	Extract(doc *goquery.Document) string
}

// SelectorStrategy tries css selectors in order and returns text of the first one
// yielding enough content. Paragraphs inside matched nodes are joined with blank lines.
type SelectorStrategy struct {
	Name         string
	Hosts        []string // host substrings this strategy applies to
	Selectors    []string
	MinParagraph int            // paragraphs with fewer characters are skipped
	MinTotal     int            // minimal total length for a selector to win
	Drop         *regexp.Regexp // paragraphs matching this are removed
}

// Match checks if host contains any of strategy hosts
func (s *SelectorStrategy) Match(host string) bool {
	host = strings.ToLower(host)
	for _, h := range s.Hosts {
		if strings.Contains(host, h) {
			return true
		}
	}
	return false
}

// Extract returns text of the first selector with enough content, or empty string
func (s *SelectorStrategy) Extract(doc *goquery.Document) string {
	for _, selector := range s.Selectors {
		nodes := doc.Find(selector)
		if nodes.Length() == 0 {
			continue
		}
		var parts []string
		nodes.Each(func(_ int, node *goquery.Selection) {
			paras := node.Find("p")
			if goquery.NodeName(node) == "p" || paras.Length() == 0 {
				parts = s.appendText(parts, node.Text())
				return
			}
			paras.Each(func(_ int, p *goquery.Selection) {
				parts = s.appendText(parts, p.Text())
			})
		})
		text := strings.Join(parts, "\n\n")
		if text != "" && runeLen(text) >= s.MinTotal {
			return text
		}
	}
	return ""
}

func (s *SelectorStrategy) appendText(parts []string, text string) []string {
	text = normalizeSpace(text)
	if text == "" || runeLen(text) < s.MinParagraph {
		return parts
	}
	if s.Drop != nil && s.Drop.MatchString(text) {
		return parts
	}
	return append(parts, text)
}

// Sites is a registry of site-specific strategies, matched by host in registration order
type Sites struct {
	mu         sync.RWMutex
	strategies []Strategy
}

// NewSites makes a registry with given strategies
func NewSites(strategies ...Strategy) *Sites {
	return &Sites{strategies: strategies}
}

// DefaultSites makes a registry with built-in strategies
func DefaultSites() *Sites {
	return NewSites(
		&SelectorStrategy{
			Name:  "cnnindonesia",
			Hosts: []string{"cnnindonesia.com"},
			Selectors: []string{
				"div.detail-text",
				"div.content-article p",
				"div.detail_text",
				"div.article-content",
			},
			MinTotal: 200,
		},
		&SelectorStrategy{
			Name:      "bikesportnews",
			Hosts:     []string{"bikesportnews.com"},
			Selectors: []string{"div.entry-content p", "article p"},
			MinTotal:  200,
			Drop:      regexp.MustCompile(`(?i)^The post .* appeared first on`),
		},
		&SelectorStrategy{
			Name:  "thepointsguy",
			Hosts: []string{"thepointsguy.com"},
			Selectors: []string{
				"div.post-content",
				"div.entry-content",
				"article.post div.content",
				"main article div.post-body",
				"div.article-content",
				"div.post-body",
			},
			MinParagraph: 21,
			MinTotal:     200,
		},
		&SelectorStrategy{
			Name:  "motorsport",
			Hosts: []string{"motorsport.com"},
			Selectors: []string{
				"div.ms-article-content p",
				"div.text-content p",
				"div.article-content p",
			},
			MinTotal: 200,
		},
	)
}

// Register adds a strategy, checked after already registered ones
func (s *Sites) Register(st Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategies = append(s.strategies, st)
}

// Lookup returns the first strategy matching host, nil if none
func (s *Sites) Lookup(host string) Strategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.strategies {
		if st.Match(host) {
			return st
		}
	}
	return nil
}

// genericStrategy covers common article container class names
var genericStrategy = &SelectorStrategy{
	Name: "generic",
	Selectors: []string{
		"article.article-content",
		"div.article-body",
		"div.entry-content",
		"main article",
		"div.post-content",
		"div#content",
		"div.detail-text",
		"div.content-article p",
		"div.article-content",
		"article",
	},
	MinTotal: 200,
}

package domain

import "time"

// FeedConfig is one configured feed source. Position is the 1-based slot used in
// logs and post metadata, ID is the storage key.
type FeedConfig struct {
	ID       int64
	Position int
	URL      string
	Category string
	Interval time.Duration
	Prompt   string
	LastRun  *time.Time
}

// Due reports whether the feed interval has elapsed since the last run
func (f FeedConfig) Due(now time.Time) bool {
	if f.LastRun == nil || f.Interval <= 0 {
		return true
	}
	return now.Sub(*f.LastRun) >= f.Interval
}

// FeedKind tells which feed format an entry came from
type FeedKind string

// feed kinds
const (
	FeedKindRSS  FeedKind = "rss"
	FeedKindAtom FeedKind = "atom"
)

// Entry is the canonical form of an RSS item or Atom entry
type Entry struct {
	Kind           FeedKind
	Title          string
	Link           string
	PublishedAt    time.Time
	Description    string
	ContentEncoded string
	EnclosureURL   string
	MediaURL       string // media:content or media:thumbnail
}

// ParsedFeed is the result of a successful feed parse
type ParsedFeed struct {
	Kind    FeedKind
	Title   string
	Link    string
	Entries []Entry
	Attempt string // parse attempt which produced the result
}

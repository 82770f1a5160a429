package domain

import "time"

// Article is the extracted form of one feed entry, lives for one processing iteration
type Article struct {
	Title       string
	Link        string
	PublishedAt time.Time
	Body        string
	ImageURL    string
}

// RewrittenArticle is the cleaned output of the rewriter
type RewrittenArticle struct {
	Title    string
	HTMLBody string
	Tags     []string
}

// PostMeta is attached to every generated post
type PostMeta struct {
	Generated  bool
	SourceFeed string
	SourceURL  string
	FeedNum    int
}

// Post is a finished article handed to a publisher
type Post struct {
	Title       string
	HTMLBody    string
	CategoryID  int64
	PublishedAt time.Time
	Meta        PostMeta
}

// PublishedPost is a row of the generated-articles listing
type PublishedPost struct {
	ID          int64
	RemoteID    int64
	Title       string
	HTMLBody    string
	Category    string
	Tags        []string
	ImagePath   string
	SourceFeed  string
	SourceURL   string
	PublishedAt time.Time
	CreatedAt   time.Time
}

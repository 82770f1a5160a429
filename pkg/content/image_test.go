package content

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/umputun/feedrewriter/pkg/domain"
)

func TestNormalizeImageURL(t *testing.T) {
	tests := []struct {
		name, raw, base, want string
		ok                    bool
	}{
		{"http forced to https", "http://example.com/a.jpg", "", "https://example.com/a.jpg", true},
		{"protocol relative", "//cdn.example.com/a.png", "", "https://cdn.example.com/a.png", true},
		{"relative resolved", "/img/a.webp", "https://site.com/post/1", "https://site.com/img/a.webp", true},
		{"entities decoded", "https://example.com/a.jpg?x=1&amp;y=2", "", "https://example.com/a.jpg?x=1&y=2", true},
		{"uppercase extension", "https://example.com/A.JPG", "", "https://example.com/A.JPG", true},
		{"resize params", "https://example.com/image?w=800", "", "https://example.com/image?w=800", true},
		{"fit param", "https://img.example.com/photo?fit=1280,960", "", "https://img.example.com/photo?fit=1280,960", true},
		{"not an image", "https://example.com/image.php?id=3", "", "", false},
		{"data uri", "data:image/png;base64,xxxx", "", "", false},
		{"ftp scheme", "ftp://example.com/a.jpg", "", "", false},
		{"empty", "", "", "", false},
		{"relative without base", "a.jpg", "", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeImageURL(tc.raw, tc.base)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestImageExt(t *testing.T) {
	assert.Equal(t, "png", ImageExt("https://example.com/a.PNG"))
	assert.Equal(t, "webp", ImageExt("https://example.com/a.webp?w=10"))
	assert.Equal(t, "jpg", ImageExt("https://example.com/image?w=800"))
	assert.Equal(t, "jpg", ImageExt("::bad"))
}

func TestImageExtractor_FromEntry(t *testing.T) {
	x := NewImageExtractor("")

	tests := []struct {
		name  string
		entry domain.Entry
		want  string
	}{
		{
			name:  "enclosure",
			entry: domain.Entry{EnclosureURL: "http://example.com/e.jpg", MediaURL: "https://example.com/m.jpg"},
			want:  "https://example.com/e.jpg",
		},
		{
			name:  "media when enclosure is not an image",
			entry: domain.Entry{EnclosureURL: "https://example.com/podcast.mp3", MediaURL: "https://example.com/m.jpg"},
			want:  "https://example.com/m.jpg",
		},
		{
			name:  "img in description",
			entry: domain.Entry{Description: `<p><img class="x" src="https://example.com/d.png" alt=""> text</p>`},
			want:  "https://example.com/d.png",
		},
		{
			name: "img in content resolved against link",
			entry: domain.Entry{
				Link:           "https://blog.example.com/posts/1",
				Description:    "no images",
				ContentEncoded: `<img src='/uploads/c.gif'>`,
			},
			want: "https://blog.example.com/uploads/c.gif",
		},
		{
			name:  "nothing",
			entry: domain.Entry{Description: "plain"},
			want:  "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, x.FromEntry(tc.entry))
		})
	}
}

func TestImageExtractor_FromHTML(t *testing.T) {
	const pageURL = "https://site.com/article/1"

	tests := []struct {
		name     string
		selector string
		html     string
		want     string
	}{
		{
			name: "og image",
			html: `<html><head><meta property="og:image" content="http://site.com/og.jpg">
				<meta name="twitter:image" content="https://site.com/tw.jpg"></head><body></body></html>`,
			want: "https://site.com/og.jpg",
		},
		{
			name: "twitter image",
			html: `<html><head><meta name="twitter:image" content="https://site.com/tw.jpg"></head></html>`,
			want: "https://site.com/tw.jpg",
		},
		{
			name: "image_src link",
			html: `<html><head><link rel="image_src" href="/src.png"></head></html>`,
			want: "https://site.com/src.png",
		},
		{
			name: "json-ld object",
			html: `<html><head><script type="application/ld+json">{"@type":"NewsArticle","image":{"@type":"ImageObject","url":"https://site.com/ld.jpg"}}</script></head></html>`,
			want: "https://site.com/ld.jpg",
		},
		{
			name: "json-ld graph with array",
			html: `<html><head><script type="application/ld+json">{"@graph":[{"@type":"WebPage"},{"@type":"Article","image":["https://site.com/g1.webp","https://site.com/g2.webp"]}]}</script></head></html>`,
			want: "https://site.com/g1.webp",
		},
		{
			name: "large content image",
			html: `<html><body><article><img src="/logo.png"><img src="/small.jpg" width="50"><img src="/big.jpg" width="800"></article></body></html>`,
			want: "https://site.com/big.jpg",
		},
		{
			name: "lazy loaded image",
			html: `<html><body><article><img src="data:image/gif;base64,R0lG" data-src="/lazy.jpg"></article></body></html>`,
			want: "https://site.com/lazy.jpg",
		},
		{
			name: "featured container",
			html: `<html><body><div class="post-thumbnail"><img src="/thumb.jpg" width="100"></div></body></html>`,
			want: "https://site.com/thumb.jpg",
		},
		{
			name:     "custom selector first",
			selector: ".hero, .cover",
			html:     `<html><head><meta property="og:image" content="https://site.com/og.jpg"></head><body><div class="cover"><img src="/cover.jpg"></div></body></html>`,
			want:     "https://site.com/cover.jpg",
		},
		{
			name: "nothing",
			html: `<html><body><p>no images</p></body></html>`,
			want: "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewImageExtractor(tc.selector).FromHTML(tc.html, pageURL))
		})
	}
}

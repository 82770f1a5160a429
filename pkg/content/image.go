package content

import (
	"encoding/json"
	"html"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/umputun/feedrewriter/pkg/domain"
)

var (
	imgSrcRe       = regexp.MustCompile(`(?i)<img[^>]+src\s*=\s*["']([^"']+)["']`)
	skipImageRe    = regexp.MustCompile(`(?i)(avatar|icon|logo)`)
	imageExts      = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true}
	resizeParams   = []string{"w", "h", "width", "height", "fit", "resize"}
	contentImages  = "article img, .entry-content img, .post-content img, main img"
	featuredImages = []string{
		".featured-image img",
		".post-thumbnail img",
		"img.wp-post-image",
		"article img",
		".entry-content img",
		".post-content img",
		"main img",
	}
)

const minImageSide = 200

// ImageExtractor finds a featured image url for an entry or article page
type ImageExtractor struct {
	selectors []string // user supplied css selectors, tried first on pages
}

// NewImageExtractor creates image extractor, customSelector is an optional comma-separated css list
func NewImageExtractor(customSelector string) *ImageExtractor {
	res := &ImageExtractor{}
	for _, s := range strings.Split(customSelector, ",") {
		if s = strings.TrimSpace(s); s != "" {
			res.selectors = append(res.selectors, s)
		}
	}
	return res
}

// FromEntry tries enclosure, media:content, and <img> in description and content:encoded
func (x *ImageExtractor) FromEntry(entry domain.Entry) string {
	candidates := []string{entry.EnclosureURL, entry.MediaURL, firstImgSrc(entry.Description), firstImgSrc(entry.ContentEncoded)}
	for _, c := range candidates {
		if u, ok := NormalizeImageURL(c, entry.Link); ok {
			return u
		}
	}
	return ""
}

// FromHTML looks for an image in the article page: custom selectors, og:image, twitter:image,
// image_src link, JSON-LD, first large content image and featured image containers
func (x *ImageExtractor) FromHTML(page, pageURL string) string {
	if strings.TrimSpace(page) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}

	try := func(raw string) (string, bool) { return NormalizeImageURL(raw, pageURL) }

	for _, sel := range x.selectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			img := s
			if goquery.NodeName(s) != "img" {
				img = s.Find("img").First()
			}
			if u, ok := try(imgSource(img)); ok {
				found = u
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	metas := []struct{ sel, attr string }{
		{`meta[property="og:image"]`, "content"},
		{`meta[property="og:image:secure_url"]`, "content"},
		{`meta[name="twitter:image"]`, "content"},
		{`meta[property="twitter:image"]`, "content"},
		{`meta[name="twitter:image:src"]`, "content"},
		{`link[rel="image_src"]`, "href"},
	}
	for _, m := range metas {
		if v, ok := doc.Find(m.sel).First().Attr(m.attr); ok {
			if u, ok := try(v); ok {
				return u
			}
		}
	}

	var ld string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, c := range jsonLDImages(s.Text()) {
			if u, ok := try(c); ok {
				ld = u
				return false
			}
		}
		return true
	})
	if ld != "" {
		return ld
	}

	var large string
	doc.Find(contentImages).EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := imgSource(img)
		if skipImageRe.MatchString(src) || tooSmall(img) {
			return true
		}
		if u, ok := try(src); ok {
			large = u
			return false
		}
		return true
	})
	if large != "" {
		return large
	}

	for _, sel := range featuredImages {
		if u, ok := try(imgSource(doc.Find(sel).First())); ok {
			return u
		}
	}
	return ""
}

// NormalizeImageURL decodes entities, resolves url against base, forces https and checks
// the extension allow-list. Urls with resize query parameters are accepted regardless of extension.
func NormalizeImageURL(raw, base string) (string, bool) {
	raw = strings.TrimSpace(html.UnescapeString(raw))
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return "", false
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if !u.IsAbs() {
		b, berr := url.Parse(base)
		if berr != nil || !b.IsAbs() {
			return "", false
		}
		u = b.ResolveReference(u)
	}
	switch u.Scheme {
	case "http", "https":
		u.Scheme = "https"
	default:
		return "", false
	}
	if u.Host == "" {
		return "", false
	}

	if imageExts[extOf(u.Path)] {
		return u.String(), true
	}
	q := u.Query()
	for _, p := range resizeParams {
		if q.Has(p) {
			return u.String(), true
		}
	}
	return "", false
}

// ImageExt returns the image extension of url from the allow-list, jpg otherwise
func ImageExt(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "jpg"
	}
	if ext := extOf(u.Path); imageExts[ext] {
		return ext
	}
	return "jpg"
}

func extOf(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

func firstImgSrc(s string) string {
	if m := imgSrcRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// imgSource prefers real source over lazy-loading placeholders
func imgSource(img *goquery.Selection) string {
	for _, attr := range []string{"data-src", "data-lazy-src", "src"} {
		if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" && !strings.HasPrefix(v, "data:") {
			return v
		}
	}
	return ""
}

// tooSmall reports images with declared width or height below minImageSide
func tooSmall(img *goquery.Selection) bool {
	for _, attr := range []string{"width", "height"} {
		if v, ok := img.Attr(attr); ok {
			if n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px")); err == nil && n < minImageSide {
				return true
			}
		}
	}
	return false
}

// jsonLDImages collects image urls from a JSON-LD block. Image may be a string, an array
// or an object with url, nested anywhere including @graph.
func jsonLDImages(data string) []string {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &v); err != nil {
		return nil
	}
	var res []string
	var walk func(v any, isImage bool)
	walk = func(v any, isImage bool) {
		switch t := v.(type) {
		case string:
			if isImage {
				res = append(res, t)
			}
		case []any:
			for _, item := range t {
				walk(item, isImage)
			}
		case map[string]any:
			if isImage {
				if u, ok := t["url"].(string); ok {
					res = append(res, u)
				}
				return
			}
			if img, ok := t["image"]; ok {
				walk(img, true)
			}
			if g, ok := t["@graph"]; ok {
				walk(g, false)
			}
		}
	}
	walk(v, false)
	return res
}

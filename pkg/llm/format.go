package llm

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxTitleLength = 65

var (
	titlePrefixes = []string{"### Title:", "## Title:", "# Title:", "Title:", "Judul:"}
	titleUnsafeRe = regexp.MustCompile(`[^\p{L}\p{N}\s\-?!.,:;()']`)
	bodyLabelRe   = regexp.MustCompile(`(?i)^(###?\s*)?(Content|Isi|Konten):\s*`)
	headingLineRe = regexp.MustCompile(`^#{2,3}\s+(.+?)\s*#*$`)
	boldRe        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	htmlBlockRe   = regexp.MustCompile(`(?i)^<(p|h[1-6]|ul|ol|div|blockquote|table|figure|pre)[\s>]`)
	h2Re          = regexp.MustCompile(`(?is)<h2(?:\s[^>]*)?>(.*?)</h2>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	slugInvalidRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	bodyPolicy    = newBodyPolicy()
	plainPolicy   = bluemonday.StrictPolicy()
)

func newBodyPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").OnElements("h2")
	p.AllowAttrs("class").OnElements("div")
	return p
}

// SplitResponse splits the model answer into title and body on the first blank line,
// or on the first newline if there is no blank line
func SplitResponse(s string) (title, body string) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if i := strings.Index(s, "\n\n"); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+2:])
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

// CleanTitle removes labels, markdown markers, wrapping quotes and unsafe punctuation,
// and truncates to 65 characters on a word boundary
func CleanTitle(s string) string {
	s = strings.TrimSpace(s)
	for stripped := true; stripped; {
		stripped = false
		for _, p := range titlePrefixes {
			if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
				s = strings.TrimSpace(s[len(p):])
				stripped = true
			}
		}
	}
	s = strings.TrimLeft(s, "#*- ")
	s = strings.TrimRight(s, "* ")
	s = strings.Trim(s, "\"'“”‘’«» ")
	s = titleUnsafeRe.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return truncateTitle(s)
}

func truncateTitle(s string) string {
	r := []rune(s)
	if len(r) <= maxTitleLength {
		return s
	}
	cut := string(r[:maxTitleLength])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,:;-")
}

// CleanBody turns model output into sanitized html. Leading content labels are removed,
// "##"/"###" headings become h2, **bold** becomes strong and plain text blocks become paragraphs.
func CleanBody(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	s = bodyLabelRe.ReplaceAllString(s, "")

	var out []string
	var para []string
	flush := func() {
		if len(para) == 0 {
			return
		}
		text := strings.Join(para, " ")
		if htmlBlockRe.MatchString(text) {
			out = append(out, text)
		} else {
			out = append(out, "<p>"+text+"</p>")
		}
		para = nil
	}

	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case headingLineRe.MatchString(line):
			flush()
			out = append(out, "<h2>"+headingLineRe.FindStringSubmatch(line)[1]+"</h2>")
		default:
			para = append(para, line)
		}
	}
	flush()

	res := boldRe.ReplaceAllString(strings.Join(out, "\n"), "<strong>$1</strong>")
	return strings.TrimSpace(bodyPolicy.Sanitize(res))
}

// BuildTOC assigns slug ids to h2 headings and prepends a linked table of contents.
// Html without h2 headings is returned unchanged.
func BuildTOC(body string) string {
	if !h2Re.MatchString(body) {
		return body
	}
	seen := map[string]int{} // last suffix tried per base slug
	used := map[string]bool{}
	var items []string
	res := h2Re.ReplaceAllStringFunc(body, func(m string) string {
		inner := h2Re.FindStringSubmatch(m)[1]
		text := strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(inner, "")))
		slug := Slugify(text)
		if slug == "" {
			slug = "section"
		}
		base := slug
		for n := max(seen[base], 1) + 1; used[slug]; n++ {
			slug = fmt.Sprintf("%s-%d", base, n)
			seen[base] = n
		}
		used[slug] = true
		items = append(items, fmt.Sprintf(`<li><a href="#%s">%s</a></li>`, slug, html.EscapeString(text)))
		return fmt.Sprintf(`<h2 id="%s">%s</h2>`, slug, inner)
	})
	toc := `<div class="frp-toc"><h3>Table of Contents</h3><ul>` + strings.Join(items, "") + `</ul></div>`
	return toc + "\n" + res
}

// Slugify makes a lowercase url-safe id, diacritics removed and non alphanumerics replaced by dashes
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if plain, _, err := transform.String(t, s); err == nil {
		s = plain
	}
	s = slugInvalidRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// plainText strips html for prompts, a space is kept where each tag was
func plainText(s string) string {
	s = plainPolicy.Sanitize(strings.ReplaceAll(s, "<", " <"))
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

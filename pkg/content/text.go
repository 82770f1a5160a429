package content

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	blockEndRe     = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|blockquote|section|article|tr)>`)
	lineBreakRe    = regexp.MustCompile(`(?i)<br\s*/?>`)
	appearedRe     = regexp.MustCompile(`(?i)The post .+? appeared first on [^\n]*?\.`)
	footerLineRe   = regexp.MustCompile(`(?im)^\s*(Share this|Tags|Categories):.*$`)
	spacesRe       = regexp.MustCompile(`[ \t\x{00A0}]+`)
	manyNewlinesRe = regexp.MustCompile(`\n\s*\n\s*`)
	strictPolicy   = bluemonday.StrictPolicy()
)

// StripHTML removes all markup keeping paragraph breaks, and decodes entities
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = blockEndRe.ReplaceAllString(s, "$0\n\n")
	s = lineBreakRe.ReplaceAllString(s, "\n")
	s = strictPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	return normalizeSpace(s)
}

// RemoveBoilerplate drops syndication footers like "The post X appeared first on Y."
// and share/tag/category lines
func RemoveBoilerplate(s string) string {
	s = appearedRe.ReplaceAllString(s, "")
	s = footerLineRe.ReplaceAllString(s, "")
	return normalizeSpace(s)
}

// normalizeSpace collapses runs of spaces in lines and keeps at most one blank line between paragraphs
func normalizeSpace(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(spacesRe.ReplaceAllString(l, " "))
	}
	s = strings.Join(lines, "\n")
	s = manyNewlinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// runeLen is the length of s in characters
func runeLen(s string) int {
	return len([]rune(s))
}

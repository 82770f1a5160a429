// Package filter implements keyword include/exclude rules for candidate articles.
package filter

import (
	"strings"
)

// Filter matches article title and body against keyword lists, case-insensitive substring match
type Filter struct {
	include []string
	exclude []string
}

// New makes filter from include terms separated by newlines and exclude terms
// separated by commas or newlines. Empty terms are ignored.
func New(include, exclude string) *Filter {
	return &Filter{
		include: terms(include, func(r rune) bool { return r == '\n' || r == '\r' }),
		exclude: terms(exclude, func(r rune) bool { return r == ',' || r == '\n' || r == '\r' }),
	}
}

// Check returns true if the article passes. Exclude wins over include, and with a
// non-empty include list at least one include term must match. Reason is set on rejection.
func (f *Filter) Check(title, body string) (ok bool, reason string) {
	text := strings.ToLower(title + "\n" + body)
	for _, term := range f.exclude {
		if strings.Contains(text, term) {
			return false, "excluded keyword: " + term
		}
	}
	if len(f.include) == 0 {
		return true, ""
	}
	for _, term := range f.include {
		if strings.Contains(text, term) {
			return true, ""
		}
	}
	return false, "no include keyword matched"
}

// Empty reports whether filter has no rules
func (f *Filter) Empty() bool {
	return len(f.include) == 0 && len(f.exclude) == 0
}

func terms(s string, sep func(rune) bool) []string {
	var res []string
	for _, t := range strings.FieldsFunc(s, sep) {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			res = append(res, t)
		}
	}
	return res
}

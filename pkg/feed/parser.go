package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/mmcdole/gofeed/rss"

	"github.com/umputun/feedrewriter/pkg/domain"
)

// parse attempts, in the order they are tried
const (
	AttemptStrict     = "strict"
	AttemptPermissive = "permissive"
	AttemptAggressive = "aggressive"
)

// AttemptError describes why one parse attempt failed
type AttemptError struct {
	Attempt string
	Line    int
	Column  int
	Err     error
}

func (e AttemptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d, column %d: %v", e.Attempt, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Attempt, e.Err)
}

// ParseError is returned when every parse attempt failed
type ParseError struct {
	Attempts []AttemptError
}

func (e *ParseError) Error() string {
	msgs := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		msgs = append(msgs, a.Error())
	}
	return "feed parse failed: " + strings.Join(msgs, "; ")
}

// Parser turns a raw payload into a ParsedFeed, recovering from malformed XML
// with a sequence of increasingly forgiving attempts
type Parser struct{}

// NewParser creates a feed parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse sanitizes data and runs strict, permissive and aggressive attempts until one succeeds
func (p *Parser) Parse(data []byte) (*domain.ParsedFeed, error) {
	clean := Sanitize(data)
	perr := &ParseError{}

	attempts := []struct {
		name string
		fn   func([]byte) (*domain.ParsedFeed, error)
	}{
		{AttemptStrict, p.parseStrict},
		{AttemptPermissive, p.parsePermissive},
		{AttemptAggressive, func(b []byte) (*domain.ParsedFeed, error) { return p.parseStrict(aggressiveCleanup(b)) }},
	}

	for _, a := range attempts {
		res, err := a.fn(clean)
		if err == nil {
			res.Attempt = a.name
			return res, nil
		}
		ae := AttemptError{Attempt: a.name, Err: err}
		var se *syntaxError
		if errors.As(err, &se) {
			ae.Line, ae.Column, ae.Err = se.line, se.col, se.err
		}
		perr.Attempts = append(perr.Attempts, ae)
	}
	return nil, perr
}

// syntaxError carries decoder position of a well-formedness failure
type syntaxError struct {
	line, col int
	err       error
}

func (e *syntaxError) Error() string { return fmt.Sprintf("line %d, column %d: %v", e.line, e.col, e.err) }
func (e *syntaxError) Unwrap() error { return e.err }

// parseStrict requires a well-formed document with a single feed root
func (p *Parser) parseStrict(data []byte) (*domain.ParsedFeed, error) {
	root, err := checkWellFormed(data)
	if err != nil {
		return nil, err
	}
	return decodeFeed(root, data)
}

// parsePermissive re-serializes the document through a non-strict decoder which
// closes HTML void tags, accepts HTML entities and fixes mismatched end tags
func (p *Parser) parsePermissive(data []byte) (*domain.ParsedFeed, error) {
	fixed, err := reserialize(data)
	if err != nil {
		return nil, err
	}
	root, err := checkWellFormed(fixed)
	if err != nil {
		return nil, err
	}
	return decodeFeed(root, fixed)
}

// checkWellFormed walks all tokens with a strict decoder and returns the root element name.
// Beyond the decoder's own checks it rejects a late XML declaration, several roots
// and text outside the root.
func checkWellFormed(data []byte) (string, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = true

	var root string
	depth, roots := 0, 0
	for i := 0; ; i++ {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		line, col := d.InputPos()
		if err != nil {
			return "", &syntaxError{line: line, col: col, err: err}
		}
		switch t := tok.(type) {
		case xml.ProcInst:
			if t.Target == "xml" && i > 0 {
				return "", &syntaxError{line: line, col: col, err: errors.New("xml declaration not at document start")}
			}
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return "", &syntaxError{line: line, col: col, err: errors.New("multiple root elements")}
				}
				root = t.Name.Local
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return "", &syntaxError{line: line, col: col, err: errors.New("text outside root element")}
			}
		}
	}
	if roots == 0 {
		return "", errors.New("no root element")
	}
	return root, nil
}

// reserialize rewrites tokens of a non-strict decoder into well-formed XML,
// keeping namespace prefixes as declared in the source
func reserialize(data []byte) ([]byte, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = false
	d.AutoClose = xml.HTMLAutoClose
	d.Entity = xml.HTMLEntity

	prefixes := map[string]string{"http://www.w3.org/XML/1998/namespace": "xml"}
	defaults := map[string]bool{}
	name := func(n xml.Name, isAttr bool) string {
		switch {
		case n.Space == "":
			return n.Local
		case n.Space == "xmlns":
			return "xmlns:" + n.Local
		case !isAttr && defaults[n.Space]:
			return n.Local
		}
		if p, ok := prefixes[n.Space]; ok {
			return p + ":" + n.Local
		}
		return n.Space + ":" + n.Local
	}

	var out bytes.Buffer
	var stack []string
	for i := 0; ; i++ {
		tok, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "unexpected EOF") {
				break // truncated payload, open elements are closed below
			}
			line, col := d.InputPos()
			return nil, &syntaxError{line: line, col: col, err: err}
		}
		switch t := tok.(type) {
		case xml.ProcInst:
			if t.Target == "xml" && i == 0 {
				out.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
			}
		case xml.Directive:
			if i <= 1 {
				out.WriteString("<!" + string(t) + ">")
			}
		case xml.StartElement:
			for _, a := range t.Attr {
				switch {
				case a.Name.Space == "xmlns":
					prefixes[a.Value] = a.Name.Local
				case a.Name.Space == "" && a.Name.Local == "xmlns":
					defaults[a.Value] = true
				}
			}
			n := name(t.Name, false)
			out.WriteString("<" + n)
			for _, a := range t.Attr {
				out.WriteString(" " + name(a.Name, true) + `="`)
				_ = xml.EscapeText(&out, []byte(a.Value))
				out.WriteString(`"`)
			}
			out.WriteString(">")
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			out.WriteString("</" + stack[len(stack)-1] + ">")
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			_ = xml.EscapeText(&out, t)
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		out.WriteString("</" + stack[i] + ">")
	}
	return out.Bytes(), nil
}

var (
	rootDeclRe    = regexp.MustCompile(`<\?xml[^>]*\?>\s*$`)
	rootCloseRe   = regexp.MustCompile(`</(rss|feed|rdf:RDF)>`)
	scriptRe      = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	styleRe       = regexp.MustCompile(`(?is)<style\b.*?</style>`)
	commentRe     = regexp.MustCompile(`(?s)<!--.*?-->`)
	leafElements  = []string{"title", "description", "content:encoded", "summary", "content", "subtitle"}
	leafElementRe = func() map[string]*regexp.Regexp {
		res := make(map[string]*regexp.Regexp, len(leafElements))
		for _, el := range leafElements {
			res[el] = regexp.MustCompile(`(?s)(<` + regexp.QuoteMeta(el) + `(?:\s[^>]*)?>)(.*?)(</` + regexp.QuoteMeta(el) + `>)`)
		}
		return res
	}()
)

// aggressiveCleanup cuts the payload down to the feed root, drops scripts, styles
// and comments, wraps markup inside text elements into CDATA and removes characters
// which aren't valid in XML
func aggressiveCleanup(data []byte) []byte {
	if loc := rootTagRe.FindIndex(data); loc != nil {
		head := data[:loc[0]]
		body := data[loc[0]:]
		if decl := rootDeclRe.Find(head); decl != nil {
			body = append(bytes.TrimSpace(append([]byte{}, decl...)), body...)
		}
		data = body
	}
	if all := rootCloseRe.FindAllIndex(data, -1); len(all) > 0 {
		last := all[len(all)-1]
		data = data[:last[1]]
	}

	data = scriptRe.ReplaceAll(data, nil)
	data = styleRe.ReplaceAll(data, nil)
	data = commentRe.ReplaceAll(data, nil)

	for _, el := range leafElements {
		data = leafElementRe[el].ReplaceAllFunc(data, func(m []byte) []byte {
			sub := leafElementRe[el].FindSubmatch(m)
			inner := sub[2]
			trimmed := bytes.TrimSpace(inner)
			if bytes.HasPrefix(trimmed, []byte("<![CDATA[")) || !bytes.ContainsAny(inner, "<&") {
				return m
			}
			inner = bytes.ReplaceAll(inner, []byte("]]>"), []byte("]]]]><![CDATA[>"))
			res := append([]byte{}, sub[1]...)
			res = append(res, "<![CDATA["...)
			res = append(res, inner...)
			res = append(res, "]]>"...)
			return append(res, sub[3]...)
		})
	}
	return stripInvalidXMLChars(data)
}

// stripInvalidXMLChars drops invalid UTF-8 and runes outside the XML Char production
func stripInvalidXMLChars(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		valid := r != utf8.RuneError || size > 1
		if valid && (r == '\t' || r == '\n' || r == '\r' || (r >= 0x20 && r <= 0xD7FF) ||
			(r >= 0xE000 && r <= 0xFFFD) || r >= 0x10000) {
			out = append(out, data[:size]...)
		}
		data = data[size:]
	}
	return out
}

// decodeFeed parses a well-formed document with the typed parser for its root
func decodeFeed(root string, data []byte) (*domain.ParsedFeed, error) {
	switch root {
	case "rss", "RDF":
		f, err := (&rss.Parser{}).Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode rss: %w", err)
		}
		return fromRSS(f), nil
	case "feed":
		f, err := (&atom.Parser{}).Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode atom: %w", err)
		}
		return fromAtom(f), nil
	default:
		return nil, fmt.Errorf("unrecognized feed root %q", root)
	}
}

// fromRSS normalizes an RSS channel into canonical entries
func fromRSS(f *rss.Feed) *domain.ParsedFeed {
	res := &domain.ParsedFeed{Kind: domain.FeedKindRSS, Title: strings.TrimSpace(f.Title), Link: f.Link}
	for _, item := range f.Items {
		if item == nil {
			continue
		}
		e := domain.Entry{
			Kind:           domain.FeedKindRSS,
			Title:          strings.TrimSpace(item.Title),
			Link:           strings.TrimSpace(item.Link),
			Description:    item.Description,
			ContentEncoded: item.Content,
			MediaURL:       mediaURL(item.Extensions),
		}
		if e.Link == "" && item.GUID != nil && strings.HasPrefix(item.GUID.Value, "http") {
			e.Link = strings.TrimSpace(item.GUID.Value)
		}
		if item.PubDateParsed != nil {
			e.PublishedAt = *item.PubDateParsed
		}
		if item.Enclosure != nil {
			e.EnclosureURL = strings.TrimSpace(item.Enclosure.URL)
		}
		res.Entries = append(res.Entries, e)
	}
	return res
}

// fromAtom normalizes an Atom feed into canonical entries
func fromAtom(f *atom.Feed) *domain.ParsedFeed {
	res := &domain.ParsedFeed{Kind: domain.FeedKindAtom, Title: strings.TrimSpace(f.Title), Link: atomLink(f.Links, "alternate")}
	for _, entry := range f.Entries {
		if entry == nil {
			continue
		}
		e := domain.Entry{
			Kind:         domain.FeedKindAtom,
			Title:        strings.TrimSpace(entry.Title),
			Link:         atomLink(entry.Links, "alternate"),
			Description:  entry.Summary,
			EnclosureURL: atomLink(entry.Links, "enclosure"),
			MediaURL:     mediaURL(entry.Extensions),
		}
		if entry.Content != nil {
			e.ContentEncoded = entry.Content.Value
		}
		switch {
		case entry.PublishedParsed != nil:
			e.PublishedAt = *entry.PublishedParsed
		case entry.UpdatedParsed != nil:
			e.PublishedAt = *entry.UpdatedParsed
		}
		res.Entries = append(res.Entries, e)
	}
	return res
}

// atomLink returns href of the first link with rel. For "alternate" a link without
// rel counts, and the first link is the last resort.
func atomLink(links []*atom.Link, rel string) string {
	for _, l := range links {
		if l == nil {
			continue
		}
		if l.Rel == rel || (rel == "alternate" && l.Rel == "") {
			return strings.TrimSpace(l.Href)
		}
	}
	if rel == "alternate" && len(links) > 0 && links[0] != nil {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}

// mediaURL picks media:content or media:thumbnail url
func mediaURL(exts ext.Extensions) string {
	media, ok := exts["media"]
	if !ok {
		return ""
	}
	for _, name := range []string{"content", "thumbnail"} {
		for _, m := range media[name] {
			if u := m.Attrs["url"]; u != "" {
				return strings.TrimSpace(u)
			}
		}
	}
	return ""
}

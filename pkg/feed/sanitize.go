package feed

import (
	"bytes"
	"html"
	"io"
	"regexp"
	"strconv"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
)

var (
	utf8BOM     = []byte{0xEF, 0xBB, 0xBF}
	xmlDeclRe   = regexp.MustCompile(`^<\?xml[^>]*\?>`)
	encodingRe  = regexp.MustCompile(`(encoding\s*=\s*["'])([^"']+)(["'])`)
	rootTagRe   = regexp.MustCompile(`<(rss|feed|rdf:RDF)[\s>/]`)
	startMarkRe = regexp.MustCompile(`<\?xml|<(rss|feed|rdf:RDF)[\s>/]`)
	entityRe    = regexp.MustCompile(`^&(#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6}|[A-Za-z][A-Za-z0-9]{0,31});`)
)

// xmlEntities are the only named entities defined by XML itself
var xmlEntities = map[string]bool{"amp": true, "lt": true, "gt": true, "quot": true, "apos": true}

// Sanitize prepares a raw feed payload for parsing. It strips the BOM, converts
// the payload to UTF-8, removes control characters XML doesn't allow, drops any
// leading garbage before the declaration or root tag and escapes bare ampersands.
func Sanitize(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = toUTF8(data)
	data = stripControlChars(data)
	data = bytes.TrimSpace(data)

	if !hasFeedStart(data) {
		if loc := startMarkRe.FindIndex(data); loc != nil {
			data = data[loc[0]:]
		}
	}
	return escapeAmpersands(data)
}

// hasFeedStart checks if data begins with an XML declaration or a feed root tag
func hasFeedStart(data []byte) bool {
	if bytes.HasPrefix(data, []byte("<?xml")) {
		return true
	}
	loc := rootTagRe.FindIndex(data)
	return loc != nil && loc[0] == 0
}

// toUTF8 converts payload to UTF-8 and rewrites the declared encoding accordingly.
// Invalid UTF-8 is decoded with the declared charset, falling back to ISO-8859-1.
func toUTF8(data []byte) []byte {
	decl := xmlDeclRe.Find(data)
	if !utf8.Valid(data) {
		var enc = charmap.ISO8859_1.NewDecoder()
		if decl != nil {
			if m := encodingRe.FindSubmatch(decl); m != nil {
				if e, _ := charset.Lookup(string(m[2])); e != nil {
					enc = e.NewDecoder()
				}
			}
		}
		if converted, err := io.ReadAll(enc.Reader(bytes.NewReader(data))); err == nil && utf8.Valid(converted) {
			data = converted
		} else {
			data = bytes.ToValidUTF8(data, nil)
		}
		decl = xmlDeclRe.Find(data)
	}

	if decl != nil && encodingRe.Match(decl) {
		fixed := encodingRe.ReplaceAll(decl, []byte("${1}UTF-8${3}"))
		data = append(fixed, data[len(decl):]...)
	}
	return data
}

// stripControlChars removes C0 control bytes other than tab, newline and carriage return
func stripControlChars(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			continue
		}
		out = append(out, b)
	}
	return out
}

// escapeAmpersands escapes '&' which doesn't start a valid reference. HTML named
// entities unknown to XML are turned into numeric references. CDATA sections and
// comments are copied as is.
func escapeAmpersands(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data) + 64)
	for i := 0; i < len(data); {
		switch {
		case bytes.HasPrefix(data[i:], []byte("<![CDATA[")):
			end := bytes.Index(data[i:], []byte("]]>"))
			if end < 0 {
				out.Write(data[i:])
				return out.Bytes()
			}
			out.Write(data[i : i+end+3])
			i += end + 3
		case bytes.HasPrefix(data[i:], []byte("<!--")):
			end := bytes.Index(data[i:], []byte("-->"))
			if end < 0 {
				out.Write(data[i:])
				return out.Bytes()
			}
			out.Write(data[i : i+end+3])
			i += end + 3
		case data[i] == '&':
			m := entityRe.Find(data[i:])
			if m == nil {
				out.WriteString("&amp;")
				i++
				continue
			}
			out.Write(entityReplacement(m))
			i += len(m)
		default:
			out.WriteByte(data[i])
			i++
		}
	}
	return out.Bytes()
}

// entityReplacement keeps numeric and XML references, converts known HTML entities
// to numeric form and escapes unknown names
func entityReplacement(ref []byte) []byte {
	name := string(ref[1 : len(ref)-1])
	if name[0] == '#' || xmlEntities[name] {
		return ref
	}
	decoded := html.UnescapeString(string(ref))
	if decoded == string(ref) {
		return append([]byte("&amp;"), ref[1:]...)
	}
	var buf bytes.Buffer
	for _, r := range decoded {
		buf.WriteString("&#" + strconv.Itoa(int(r)) + ";")
	}
	return buf.Bytes()
}

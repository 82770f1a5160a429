package llm

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitResponse(t *testing.T) {
	tests := []struct {
		in, title, body string
	}{
		{"Title here\n\nBody one\n\nBody two", "Title here", "Body one\n\nBody two"},
		{"Title here\nBody line", "Title here", "Body line"},
		{"Title\r\n\r\nBody", "Title", "Body"},
		{"  only title  ", "only title", ""},
	}
	for _, tc := range tests {
		title, body := SplitResponse(tc.in)
		assert.Equal(t, tc.title, title, tc.in)
		assert.Equal(t, tc.body, body, tc.in)
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"markdown title label", "### Title: Breaking: Storm Hits City", "Breaking: Storm Hits City"},
		{"indonesian label", "Judul: Berita Hari Ini", "Berita Hari Ini"},
		{"plain label lowercase", "title: Lower Label", "Lower Label"},
		{"wrapping quotes", `"Quoted Title"`, "Quoted Title"},
		{"bold markers", "**Bold Title**", "Bold Title"},
		{"heading marker", "# Heading", "Heading"},
		{"unsafe punctuation", "Title: Rocket <launch> & more!", "Rocket launch more!"},
		{"keeps safe punctuation", "Why (and how)? It's fine: yes, really.", "Why (and how)? It's fine: yes, really."},
		{"collapse spaces", "Many    spaces\there", "Many spaces here"},
		{"truncated on word", "This is a very long title that definitely exceeds the sixty five character limit for titles",
			"This is a very long title that definitely exceeds the sixty five"},
		{"unicode kept", "Judul: Pemilu 2024 berjalan lancar", "Pemilu 2024 berjalan lancar"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CleanTitle(tc.in)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, len([]rune(got)), 65)
		})
	}
}

func TestCleanBody(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{
			name: "label heading and bold",
			in:   "Content:\nThe storm caused damage.\n\n## Aftermath\nCleanup **began** today.",
			want: "<p>The storm caused damage.</p>\n<h2>Aftermath</h2>\n<p>Cleanup <strong>began</strong> today.</p>",
		},
		{name: "isi label", in: "Isi: teks berita", want: "<p>teks berita</p>"},
		{name: "konten label with heading marks", in: "### Konten: isi", want: "<p>isi</p>"},
		{name: "h3 markdown becomes h2", in: "### Section", want: "<h2>Section</h2>"},
		{name: "lines joined in paragraph", in: "line one\nline two", want: "<p>line one line two</p>"},
		{name: "script removed", in: "<p>ok</p><script>alert(1)</script>", want: "<p>ok</p>"},
		{name: "event handlers removed", in: `<p onclick="x()">hi</p>`, want: "<p>hi</p>"},
		{name: "empty", in: "  ", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanBody(tc.in))
		})
	}
}

func TestBuildTOC(t *testing.T) {
	in := "<p>intro</p>\n<h2>First Part</h2>\n<p>a</p>\n<h2>First Part</h2>\n<h2>Café &amp; Bar</h2>"
	out := BuildTOC(in)

	toc := `<div class="frp-toc"><h3>Table of Contents</h3><ul>` +
		`<li><a href="#first-part">First Part</a></li>` +
		`<li><a href="#first-part-2">First Part</a></li>` +
		`<li><a href="#cafe-bar">Café &amp; Bar</a></li>` +
		`</ul></div>`
	assert.True(t, strings.HasPrefix(out, toc), out)
	assert.Contains(t, out, `<h2 id="first-part">First Part</h2>`)
	assert.Contains(t, out, `<h2 id="first-part-2">First Part</h2>`)
	assert.Contains(t, out, `<h2 id="cafe-bar">Café &amp; Bar</h2>`)
	assert.Contains(t, out, "<p>intro</p>")

	assert.Equal(t, "<p>no headings</p>", BuildTOC("<p>no headings</p>"))
}

func TestBuildTOC_UniqueAnchors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ids  []string
	}{
		{name: "suffix taken by a later heading", in: "<h2>Intro</h2><p>a</p><h2>Intro</h2><p>b</p><h2>Intro 2</h2>",
			ids: []string{"intro", "intro-2", "intro-2-2"}},
		{name: "suffix taken by an earlier heading", in: "<h2>Intro 2</h2><h2>Intro</h2><h2>Intro</h2>",
			ids: []string{"intro-2", "intro", "intro-3"}},
		{name: "empty headings", in: "<h2>!!</h2><h2>??</h2>", ids: []string{"section", "section-2"}},
	}

	idRe := regexp.MustCompile(`<h2 id="([^"]+)">`)
	hrefRe := regexp.MustCompile(`<a href="#([^"]+)">`)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := BuildTOC(tt.in)
			var ids, hrefs []string
			for _, m := range idRe.FindAllStringSubmatch(out, -1) {
				ids = append(ids, m[1])
			}
			for _, m := range hrefRe.FindAllStringSubmatch(out, -1) {
				hrefs = append(hrefs, m[1])
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, ids, hrefs, "every link points to its own heading")
		})
	}
}

func TestBuildTOC_AfterCleanBody(t *testing.T) {
	out := BuildTOC(CleanBody("Intro text\n\n## One\nbody\n\n## Two\nmore"))
	assert.Contains(t, out, `<a href="#one">One</a>`)
	assert.Contains(t, out, `<h2 id="two">Two</h2>`)
	assert.Equal(t, `<h2 id="x">X</h2>`, CleanBody(`<h2 id="x">X</h2>`))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", Slugify("Hello, World!"))
	assert.Equal(t, "unicode-text", Slugify("Ünïcödé Têxt"))
	assert.Equal(t, "berita-2024", Slugify("  Berita -- 2024 "))
	assert.Equal(t, "", Slugify(" -- "))
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"Go", "rust", "AI", "ml", "5G"}, ParseTags("1. Go, rust, Go, \"AI\", #ml, 5G, extra"))
	assert.Equal(t, []string{"one", "two"}, ParseTags("one\ntwo\n"))
	assert.Empty(t, ParseTags(" , ,"))
}

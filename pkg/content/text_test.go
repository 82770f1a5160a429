package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"paragraphs", "<p>Hello &amp; <b>world</b></p><p>Second</p>", "Hello & world\n\nSecond"},
		{"line break", "a<br>b<br/>c", "a\nb\nc"},
		{"entities", "caf&eacute; &quot;quoted&quot;", `café "quoted"`},
		{"spaces collapsed", "<div>  lots   of\tspace </div>", "lots of space"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripHTML(tc.in))
		})
	}
}

func TestRemoveBoilerplate(t *testing.T) {
	in := "Body text.\n\nThe post Foo appeared first on Bar News.\nShare this: Facebook\nTags: a, b\nCategories: news"
	assert.Equal(t, "Body text.", RemoveBoilerplate(in))

	assert.Equal(t, "keep Tags: inline", RemoveBoilerplate("keep Tags: inline"))
}

package validate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/evidencekit/evidence"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Plain Text", "plain text"},
		{"  collapse\t\nall   whitespace ", "collapse all whitespace"},
		{"7–8 and 7—8 and 7‐8", "7-8 and 7-8 and 7-8"},
		{"", ""},
		{"\n\t ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestCorpusJoinsPagesWithSpans(t *testing.T) {
	c := NewCorpus([]evidence.PageContent{
		{Page: 1, Text: "First Page"},
		{Page: 2, Text: ""},
		{Page: 3, Text: "Third Page"},
	})
	assert.Equal(t, "first page third page", c.Text())

	pos, found := c.find("third page")
	require.True(t, found)
	page := c.pageAt(pos)
	require.NotNil(t, page)
	assert.Equal(t, 3, *page)
}

func TestCorpusFindFallbacks(t *testing.T) {
	c := NewCorpus([]evidence.PageContent{{Page: 1, Text: "Security Audit Completion Report"}})

	pos, found := c.find("audit completion")
	require.True(t, found)
	assert.GreaterOrEqual(t, pos, 0)

	// Compact fallback: spacing lost in the phrase.
	pos, found = c.find("auditcompletion")
	require.True(t, found)
	assert.GreaterOrEqual(t, pos, 0)

	_, found = c.find("entirely absent wording")
	assert.False(t, found)

	_, found = c.find("")
	assert.False(t, found)
}

func TestSnippetIsBounded(t *testing.T) {
	long := strings.Repeat("padding ", 40) + "needle here " + strings.Repeat("padding ", 40)
	c := NewCorpus([]evidence.PageContent{{Page: 1, Text: long}})
	pos, found := c.find("needle here")
	require.True(t, found)
	snip := c.snippet(pos, len("needle here"))
	assert.Contains(t, snip, "needle here")
	assert.LessOrEqual(t, len(snip), len("needle here")+2*snippetRadius)
	assert.Empty(t, c.snippet(-1, 5))
}

func TestSnippetKeepsRuneBoundaries(t *testing.T) {
	// Two-byte runes on both sides put the window edges mid-rune unless the
	// cut points are nudged.
	long := strings.Repeat("é", 80) + " marker " + strings.Repeat("é", 80)
	c := NewCorpus([]evidence.PageContent{{Page: 1, Text: long}})
	pos, found := c.find("marker")
	require.True(t, found)

	snip := c.snippet(pos, len("marker"))
	assert.True(t, utf8.ValidString(snip), "snippet split a rune: %q", snip)
	assert.Contains(t, snip, "marker")
}

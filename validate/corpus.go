package validate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/wudi/evidencekit/evidence"
)

// snippetRadius bounds evidence snippets to ±60 characters around a match.
const snippetRadius = 60

// fuzzyFloor is the partial-ratio score at which a phrase counts as present
// despite OCR or typesetting noise in the corpus.
const fuzzyFloor = 80

// Corpus is the whitespace-normalized, case-folded concatenation of all page
// texts, with an offset map back to the originating pages. Building it once
// per run keeps rule evaluation pure and order-independent.
type Corpus struct {
	text    string
	compact string // text with spaces removed, for glued-together matches
	// compactToText maps each compact index to its index in text.
	compactToText []int
	spans         []pageSpan
}

type pageSpan struct {
	start, end int // [start,end) in text
	page       int
}

// NewCorpus builds the normalized corpus for the extracted pages.
func NewCorpus(pages []evidence.PageContent) *Corpus {
	c := &Corpus{}
	var b strings.Builder
	for _, p := range pages {
		norm := Normalize(p.Text)
		if norm == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		start := b.Len()
		b.WriteString(norm)
		c.spans = append(c.spans, pageSpan{start: start, end: b.Len(), page: p.Page})
	}
	c.text = b.String()
	compact := make([]byte, 0, len(c.text))
	c.compactToText = make([]int, 0, len(c.text))
	for i := 0; i < len(c.text); i++ {
		if c.text[i] == ' ' {
			continue
		}
		compact = append(compact, c.text[i])
		c.compactToText = append(c.compactToText, i)
	}
	c.compact = string(compact)
	return c
}

// Normalize folds case, maps typographic dashes to '-', and collapses
// whitespace runs to single spaces.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true // swallow leading whitespace
	for _, r := range strings.ToLower(s) {
		if r >= '\u2010' && r <= '\u2015' {
			r = '-'
		}
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

// Text returns the normalized corpus.
func (c *Corpus) Text() string { return c.text }

// find locates a phrase in the corpus. The returned position is -1 when the
// phrase was only matched fuzzily or through the compacted text in a way
// that loses provenance.
func (c *Corpus) find(phrase string) (pos int, found bool) {
	p := Normalize(phrase)
	if p == "" {
		return -1, false
	}
	if idx := strings.Index(c.text, p); idx >= 0 {
		return idx, true
	}
	pc := strings.ReplaceAll(p, " ", "")
	if idx := strings.Index(c.compact, pc); idx >= 0 {
		return c.compactToText[idx], true
	}
	if len(c.text) > 0 && fuzzy.PartialRatio(p, c.text) >= fuzzyFloor {
		return -1, true
	}
	return -1, false
}

// pageAt resolves a corpus position to its 1-based page number.
func (c *Corpus) pageAt(pos int) *int {
	if pos < 0 {
		return nil
	}
	for _, span := range c.spans {
		if pos >= span.start && pos < span.end {
			page := span.page
			return &page
		}
	}
	return nil
}

// snippet returns the bounded corpus window around a match. Window edges are
// nudged to rune boundaries so multibyte characters are never split.
func (c *Corpus) snippet(pos, matchLen int) string {
	if pos < 0 {
		return ""
	}
	start := pos - snippetRadius
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(c.text[start]) {
		start--
	}
	end := pos + matchLen + snippetRadius
	if end > len(c.text) {
		end = len(c.text)
	}
	for end < len(c.text) && !utf8.RuneStart(c.text[end]) {
		end++
	}
	return c.text[start:end]
}

// Package doc scrapes text from legacy binary Word (.doc) files. It does not
// implement the OLE compound-file format in full; it validates the container
// signature and then recovers printable text runs (both 8-bit and UTF-16LE)
// from the raw payload, which is the same best-effort contract legacy
// converters offer. Embedded images are not extracted for this format by
// policy: callers must report screenshot checks as not evaluated rather than
// failed.
package doc

import (
	"bytes"
	"errors"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// minRun is the shortest printable run worth keeping; shorter runs are
// overwhelmingly format noise.
const minRun = 4

var errNotOLE = errors.New("not an OLE compound document")

// Extract returns the best-effort text content of a legacy .doc payload.
func Extract(data []byte) (string, error) {
	if len(data) < len(oleSignature) || !bytes.Equal(data[:len(oleSignature)], oleSignature) {
		return "", errNotOLE
	}
	ansi := scrapeANSI(data)
	wide := scrapeUTF16LE(data)
	// Word stores body text in whichever encoding the document was authored
	// with; keep the richer harvest. Compared in runes, not bytes: misreading
	// ANSI text as UTF-16 yields few runes that are wide in UTF-8.
	if utf8.RuneCountInString(wide) > utf8.RuneCountInString(ansi) {
		return wide, nil
	}
	return ansi, nil
}

func printableByte(c byte) bool {
	return c == '\t' || c == '\n' || c == '\r' || (c >= 0x20 && c < 0x7F)
}

func scrapeANSI(data []byte) string {
	var out strings.Builder
	var run []byte
	flush := func() {
		if len(run) >= minRun {
			writeRun(&out, string(run))
		}
		run = run[:0]
	}
	for _, c := range data {
		if printableByte(c) {
			run = append(run, c)
			continue
		}
		flush()
	}
	flush()
	return strings.TrimSpace(out.String())
}

func scrapeUTF16LE(data []byte) string {
	var out strings.Builder
	var run []uint16
	flush := func() {
		if len(run) >= minRun {
			writeRun(&out, string(utf16.Decode(run)))
		}
		run = run[:0]
	}
	for i := 0; i+1 < len(data); i += 2 {
		u := uint16(data[i]) | uint16(data[i+1])<<8
		r := rune(u)
		if u != 0 && (r == '\t' || r == '\n' || r == '\r' || unicode.IsPrint(r)) && !unicode.Is(unicode.Cs, r) {
			run = append(run, u)
			continue
		}
		flush()
	}
	flush()
	return strings.TrimSpace(out.String())
}

func writeRun(out *strings.Builder, s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if out.Len() > 0 {
		out.WriteByte('\n')
	}
	out.WriteString(s)
}

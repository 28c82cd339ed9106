package pdf

import (
	"errors"
	"io"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// pageText extracts best-effort text from a page's content streams by
// replaying the text-showing operators (Tj, TJ, ', "). Font CMaps are not
// consulted; strings are decoded as UTF-16BE when they carry a BOM and as
// PDFDocEncoding (latin-1 compatible for the printable range) otherwise,
// which covers the simple fonts evidence documents are produced with.
func (d *Document) pageText(page Dict) string {
	var builder strings.Builder
	for _, blob := range d.contentStreams(page[Name("Contents")]) {
		builder.WriteString(extractTextFromContent(blob))
	}
	return strings.TrimSpace(builder.String())
}

func (d *Document) contentStreams(obj Object) [][]byte {
	switch v := obj.(type) {
	case Ref:
		return d.contentStreams(d.Resolve(v))
	case Array:
		var out [][]byte
		for _, item := range v {
			out = append(out, d.contentStreams(item)...)
		}
		return out
	case *Stream:
		data, err := d.decodeStream(v)
		if err != nil {
			return nil
		}
		return [][]byte{data}
	}
	return nil
}

func extractTextFromContent(data []byte) string {
	tr := &tokens{l: newLexer(data)}
	var operands []Object
	var out strings.Builder

	flushLine := func() {
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteByte('\n')
		}
	}

	for {
		tok, err := tr.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			tr.l.pos++
			continue
		}
		if tok.typ == tokKeyword {
			switch tok.str {
			case "BT", "T*", "ET":
				flushLine()
			case "Td", "TD":
				if len(operands) >= 1 {
					if dy, ok := asFloat(operands[len(operands)-1]); ok && dy != 0 {
						flushLine()
					}
				}
			case "Tj":
				writeShownText(&out, lastString(operands))
			case "'", "\"":
				flushLine()
				writeShownText(&out, lastString(operands))
			case "TJ":
				if len(operands) > 0 {
					if arr, ok := operands[len(operands)-1].(Array); ok {
						for _, item := range arr {
							if s, ok := item.(String); ok {
								writeShownText(&out, s)
							}
						}
					}
				}
			case "BI":
				skipInlineImage(tr.l)
			}
			operands = operands[:0]
			continue
		}
		tr.unread(tok)
		operand, err := parseValue(tr)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			operands = operands[:0]
			continue
		}
		operands = append(operands, operand)
	}
	return out.String()
}

func lastString(operands []Object) String {
	if len(operands) == 0 {
		return nil
	}
	if s, ok := operands[len(operands)-1].(String); ok {
		return s
	}
	return nil
}

func asFloat(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case Integer:
		return float64(v), true
	case Real:
		return float64(v), true
	}
	return 0, false
}

func writeShownText(out *strings.Builder, data String) {
	if len(data) == 0 {
		return
	}
	out.WriteString(decodeTextString(data))
}

func decodeTextString(data []byte) string {
	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		return decodeUTF16BE(data[2:])
	}
	if utf8.Valid(data) {
		return string(data)
	}
	// PDFDocEncoding: treat bytes as latin-1.
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

func decodeUTF16BE(data []byte) string {
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])<<8|uint16(data[i+1]))
	}
	return string(utf16.Decode(units))
}

// skipInlineImage advances past the binary payload of a BI ... ID ... EI
// inline image operator so the lexer does not trip over raw sample data.
func skipInlineImage(l *lexer) {
	data := l.data
	idx := indexToken(data[l.pos:], "ID")
	if idx < 0 {
		l.pos = len(data)
		return
	}
	pos := l.pos + idx + 2
	end := indexToken(data[pos:], "EI")
	if end < 0 {
		l.pos = len(data)
		return
	}
	l.pos = pos + end + 2
}

// indexToken finds a keyword delimited by whitespace on both sides.
func indexToken(data []byte, kw string) int {
	for i := 0; i+len(kw) <= len(data); i++ {
		if string(data[i:i+len(kw)]) != kw {
			continue
		}
		beforeOK := i == 0 || isWhitespace(data[i-1])
		after := i + len(kw)
		afterOK := after == len(data) || isWhitespace(data[after])
		if beforeOK && afterOK {
			return i
		}
	}
	return -1
}

package pdf

import (
	"bytes"
	"errors"
	"io"
	"strconv"
)

type tokenType int

const (
	tokDictStart tokenType = iota // '<<'
	tokDictEnd                    // '>>'
	tokArrayStart                 // '['
	tokArrayEnd                   // ']'
	tokName                       // '/Name'
	tokString                     // literal or hex string
	tokInt
	tokReal
	tokKeyword // obj, endobj, stream, trailer, xref, true, false, null, R, ...
)

type token struct {
	typ   tokenType
	str   string
	bytes []byte
	i     int64
	f     float64
	pos   int
}

// lexer tokenizes PDF syntax over an in-memory buffer. The same lexer is used
// for file-level object scanning and for decoded content streams.
type lexer struct {
	data []byte
	pos  int
}

func newLexer(data []byte) *lexer { return &lexer{data: data} }

func isWhitespace(c byte) bool {
	return c == 0x00 || c == 0x09 || c == 0x0A || c == 0x0C || c == 0x0D || c == 0x20
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) skipWSAndComments() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhitespace(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *lexer) next() (token, error) {
	l.skipWSAndComments()
	if l.pos >= len(l.data) {
		return token{}, io.EOF
	}
	start := l.pos
	c := l.data[l.pos]
	switch c {
	case '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.pos += 2
			return token{typ: tokDictStart, pos: start}, nil
		}
		return l.scanHexString()
	case '>':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
			l.pos += 2
			return token{typ: tokDictEnd, pos: start}, nil
		}
		l.pos++
		return token{typ: tokKeyword, str: ">", pos: start}, nil
	case '[':
		l.pos++
		return token{typ: tokArrayStart, pos: start}, nil
	case ']':
		l.pos++
		return token{typ: tokArrayEnd, pos: start}, nil
	case '(':
		return l.scanLiteralString()
	case '/':
		return l.scanName()
	case '{', '}':
		l.pos++
		return token{typ: tokKeyword, str: string(c), pos: start}, nil
	}
	if c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
		return l.scanNumber()
	}
	return l.scanKeyword()
}

func (l *lexer) scanName() (token, error) {
	start := l.pos
	l.pos++ // '/'
	var out bytes.Buffer
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		if c == '#' && l.pos+2 < len(l.data) {
			hi := hexNibble(l.data[l.pos+1])
			lo := hexNibble(l.data[l.pos+2])
			if hi >= 0 && lo >= 0 {
				out.WriteByte(byte(hi<<4 | lo))
				l.pos += 3
				continue
			}
		}
		out.WriteByte(c)
		l.pos++
	}
	return token{typ: tokName, str: out.String(), pos: start}, nil
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '+' || c == '-' || c == '.' || c == 'e' || c == 'E' || (c >= '0' && c <= '9') {
			l.pos++
			continue
		}
		break
	}
	lit := string(l.data[start:l.pos])
	if !bytes.ContainsAny([]byte(lit), ".eE") {
		i, err := strconv.ParseInt(lit, 10, 64)
		if err == nil {
			return token{typ: tokInt, i: i, pos: start}, nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return token{}, errors.New("malformed number " + strconv.Quote(lit))
	}
	return token{typ: tokReal, f: f, pos: start}, nil
}

func (l *lexer) scanKeyword() (token, error) {
	start := l.pos
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		l.pos++
	}
	if l.pos == start {
		l.pos++ // never stall on a stray delimiter
	}
	return token{typ: tokKeyword, str: string(l.data[start:l.pos]), pos: start}, nil
}

func (l *lexer) scanLiteralString() (token, error) {
	start := l.pos
	l.pos++ // '('
	var out bytes.Buffer
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch c {
		case '\\':
			l.pos++
			if l.pos >= len(l.data) {
				return token{}, errors.New("unterminated string escape")
			}
			e := l.data[l.pos]
			switch e {
			case 'n':
				out.WriteByte('\n')
			case 'r':
				out.WriteByte('\r')
			case 't':
				out.WriteByte('\t')
			case 'b':
				out.WriteByte('\b')
			case 'f':
				out.WriteByte('\f')
			case '(', ')', '\\':
				out.WriteByte(e)
			case '\r':
				// line continuation; swallow an optional LF
				if l.pos+1 < len(l.data) && l.data[l.pos+1] == '\n' {
					l.pos++
				}
			case '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for n := 0; n < 2 && l.pos+1 < len(l.data); n++ {
						nx := l.data[l.pos+1]
						if nx < '0' || nx > '7' {
							break
						}
						v = v<<3 | int(nx-'0')
						l.pos++
					}
					out.WriteByte(byte(v))
				} else {
					out.WriteByte(e)
				}
			}
			l.pos++
		case '(':
			depth++
			out.WriteByte(c)
			l.pos++
		case ')':
			depth--
			l.pos++
			if depth == 0 {
				return token{typ: tokString, bytes: out.Bytes(), pos: start}, nil
			}
			out.WriteByte(c)
		default:
			out.WriteByte(c)
			l.pos++
		}
	}
	return token{}, errors.New("unterminated literal string")
}

func (l *lexer) scanHexString() (token, error) {
	start := l.pos
	l.pos++ // '<'
	var out bytes.Buffer
	var hi = -1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '>' {
			l.pos++
			if hi >= 0 {
				out.WriteByte(byte(hi << 4)) // odd digit: low nibble is zero
			}
			return token{typ: tokString, bytes: out.Bytes(), pos: start}, nil
		}
		if isWhitespace(c) {
			l.pos++
			continue
		}
		n := hexNibble(c)
		if n < 0 {
			return token{}, errors.New("invalid hex string digit")
		}
		if hi < 0 {
			hi = n
		} else {
			out.WriteByte(byte(hi<<4 | n))
			hi = -1
		}
		l.pos++
	}
	return token{}, errors.New("unterminated hex string")
}

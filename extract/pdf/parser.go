package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
)

// Document is a parsed PDF file: every indirect object keyed by reference,
// plus the (merged) trailer dictionary.
type Document struct {
	Version string
	Objects map[Ref]Object
	Trailer Dict
}

const maxResolveDepth = 32

var errNoHeader = errors.New("missing %PDF header")

// Parse reads a complete PDF byte payload. It scans the file sequentially
// for indirect object definitions rather than trusting the xref table, which
// tolerates the broken offsets common in real-world evidence uploads, then
// inflates compressed object streams so objects stored inside them resolve
// normally.
func Parse(data []byte) (*Document, error) {
	version, body, err := splitHeader(data)
	if err != nil {
		return nil, err
	}
	doc := &Document{Version: version, Objects: make(map[Ref]Object)}
	if err := doc.scan(body); err != nil {
		return nil, err
	}
	if len(doc.Objects) == 0 {
		return nil, errors.New("no indirect objects found")
	}
	doc.inflateObjectStreams()
	doc.recoverTrailer()
	return doc, nil
}

func splitHeader(data []byte) (string, []byte, error) {
	limit := len(data)
	if limit > 1024 {
		limit = 1024
	}
	idx := bytes.Index(data[:limit], []byte("%PDF-"))
	if idx < 0 {
		return "", nil, errNoHeader
	}
	rest := data[idx+len("%PDF-"):]
	end := 0
	for end < len(rest) && end < 8 && !isWhitespace(rest[end]) {
		end++
	}
	return string(rest[:end]), data[idx:], nil
}

// tokens wraps the lexer with unread support for the lookahead the object
// grammar needs ("N G obj", "N G R").
type tokens struct {
	l   *lexer
	buf []token
}

func (t *tokens) next() (token, error) {
	if n := len(t.buf); n > 0 {
		tok := t.buf[n-1]
		t.buf = t.buf[:n-1]
		return tok, nil
	}
	return t.l.next()
}

func (t *tokens) unread(tok token) { t.buf = append(t.buf, tok) }

func (d *Document) scan(data []byte) error {
	tr := &tokens{l: newLexer(data)}
	for {
		tok, err := tr.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// Resynchronize after an unreadable token run.
			tr.l.pos++
			continue
		}
		switch {
		case tok.typ == tokInt:
			if ref, ok := peekObjectHeader(tr, tok); ok {
				if err := d.scanIndirectObject(tr, data, ref); err != nil && errors.Is(err, io.EOF) {
					return nil
				}
			}
		case tok.typ == tokKeyword && tok.str == "trailer":
			obj, err := parseValue(tr)
			if err != nil {
				continue
			}
			if dict, ok := obj.(Dict); ok {
				d.mergeTrailer(dict)
			}
		default:
			// xref entries, startxref offsets and stray keywords are ignored.
		}
	}
}

// peekObjectHeader checks whether the two tokens after an integer form
// "<gen> obj"; when they do not, everything peeked is pushed back.
func peekObjectHeader(tr *tokens, num token) (Ref, bool) {
	genTok, err := tr.next()
	if err != nil {
		return Ref{}, false
	}
	if genTok.typ != tokInt {
		tr.unread(genTok)
		return Ref{}, false
	}
	kw, err := tr.next()
	if err != nil {
		tr.unread(genTok)
		return Ref{}, false
	}
	if kw.typ != tokKeyword || kw.str != "obj" {
		tr.unread(kw)
		tr.unread(genTok)
		return Ref{}, false
	}
	return Ref{Num: int(num.i), Gen: int(genTok.i)}, true
}

func (d *Document) scanIndirectObject(tr *tokens, data []byte, ref Ref) error {
	obj, err := parseValue(tr)
	if err != nil {
		return err
	}
	if dict, ok := obj.(Dict); ok {
		kw, err := tr.next()
		if err == nil {
			if kw.typ == tokKeyword && kw.str == "stream" {
				raw, err := d.readStreamData(tr, data, dict)
				if err != nil {
					return err
				}
				obj = &Stream{Dict: dict, Raw: raw}
			} else {
				tr.unread(kw)
			}
		}
	}
	d.Objects[ref] = obj
	// Trailing endobj is consumed by the main loop's keyword fallthrough.
	return nil
}

func (d *Document) readStreamData(tr *tokens, data []byte, dict Dict) ([]byte, error) {
	start := tr.l.pos
	// One EOL follows the stream keyword.
	if start < len(data) && data[start] == '\r' {
		start++
	}
	if start < len(data) && data[start] == '\n' {
		start++
	}
	if length, ok := dict.integer("Length"); ok {
		end := start + int(length)
		if end <= len(data) && endstreamNear(data, end) {
			tr.l.pos = end
			return data[start:end], nil
		}
	}
	// Length missing, indirect, or wrong: scan for the endstream marker.
	idx := bytes.Index(data[start:], []byte("endstream"))
	if idx < 0 {
		return nil, errors.New("unterminated stream")
	}
	end := start + idx
	tr.l.pos = end
	return trimStreamEOL(data[start:end]), nil
}

// endstreamNear reports whether "endstream" appears within a small window
// after the claimed stream end, allowing for EOL padding.
func endstreamNear(data []byte, end int) bool {
	windowEnd := end + 4 + len("endstream")
	if windowEnd > len(data) {
		windowEnd = len(data)
	}
	return bytes.Contains(data[end:windowEnd], []byte("endstream"))
}

func trimStreamEOL(data []byte) []byte {
	for len(data) > 0 && (data[len(data)-1] == '\n' || data[len(data)-1] == '\r') {
		data = data[:len(data)-1]
	}
	return data
}

func (d *Document) mergeTrailer(dict Dict) {
	if d.Trailer == nil {
		d.Trailer = make(Dict, len(dict))
	}
	// Later trailers belong to later incremental updates and win.
	for k, v := range dict {
		d.Trailer[k] = v
	}
}

// parseValue parses one object value from the token stream.
func parseValue(tr *tokens) (Object, error) {
	tok, err := tr.next()
	if err != nil {
		return nil, err
	}
	switch tok.typ {
	case tokName:
		return Name(tok.str), nil
	case tokString:
		return String(tok.bytes), nil
	case tokReal:
		return Real(tok.f), nil
	case tokInt:
		if ref, ok := peekRef(tr, tok); ok {
			return ref, nil
		}
		return Integer(tok.i), nil
	case tokArrayStart:
		return parseArray(tr)
	case tokDictStart:
		return parseDict(tr)
	case tokKeyword:
		switch tok.str {
		case "true":
			return Boolean(true), nil
		case "false":
			return Boolean(false), nil
		case "null":
			return Null{}, nil
		}
		return nil, fmt.Errorf("unexpected keyword %q", tok.str)
	}
	return nil, fmt.Errorf("unexpected token at offset %d", tok.pos)
}

func peekRef(tr *tokens, num token) (Ref, bool) {
	genTok, err := tr.next()
	if err != nil {
		return Ref{}, false
	}
	if genTok.typ != tokInt {
		tr.unread(genTok)
		return Ref{}, false
	}
	kw, err := tr.next()
	if err != nil {
		tr.unread(genTok)
		return Ref{}, false
	}
	if kw.typ != tokKeyword || kw.str != "R" {
		tr.unread(kw)
		tr.unread(genTok)
		return Ref{}, false
	}
	return Ref{Num: int(num.i), Gen: int(genTok.i)}, true
}

func parseArray(tr *tokens) (Object, error) {
	arr := Array{}
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		if tok.typ == tokArrayEnd {
			return arr, nil
		}
		tr.unread(tok)
		item, err := parseValue(tr)
		if err != nil {
			return nil, err
		}
		arr = append(arr, item)
	}
}

func parseDict(tr *tokens) (Object, error) {
	dict := Dict{}
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		if tok.typ == tokDictEnd {
			return dict, nil
		}
		if tok.typ != tokName {
			return nil, fmt.Errorf("expected name key in dict at offset %d", tok.pos)
		}
		val, err := parseValue(tr)
		if err != nil {
			return nil, err
		}
		dict[Name(tok.str)] = val
	}
}

// Resolve follows indirect references until a direct object is reached.
func (d *Document) Resolve(obj Object) Object {
	for depth := 0; depth < maxResolveDepth; depth++ {
		ref, ok := obj.(Ref)
		if !ok {
			return obj
		}
		next, ok := d.Objects[ref]
		if !ok {
			return Null{}
		}
		obj = next
	}
	return Null{}
}

func (d *Document) resolveDict(obj Object) Dict {
	if dict, ok := d.Resolve(obj).(Dict); ok {
		return dict
	}
	if st, ok := d.Resolve(obj).(*Stream); ok {
		return st.Dict
	}
	return nil
}

func (d *Document) resolveInt(obj Object) (int64, bool) {
	switch v := d.Resolve(obj).(type) {
	case Integer:
		return int64(v), true
	case Real:
		return int64(v), true
	}
	return 0, false
}

// inflateObjectStreams parses objects stored in /Type /ObjStm compressed
// streams and registers them under their own numbers. Already-registered
// numbers keep the directly scanned object.
func (d *Document) inflateObjectStreams() {
	found := make(map[Ref]Object)
	for _, obj := range d.Objects {
		st, ok := obj.(*Stream)
		if !ok {
			continue
		}
		if typ, _ := st.Dict.name("Type"); typ != "ObjStm" {
			continue
		}
		embedded, err := d.decodeObjectStream(st)
		if err != nil {
			continue
		}
		for num, o := range embedded {
			ref := Ref{Num: num}
			if _, exists := d.Objects[ref]; !exists {
				found[ref] = o
			}
		}
	}
	for ref, obj := range found {
		d.Objects[ref] = obj
	}
}

func (d *Document) decodeObjectStream(st *Stream) (map[int]Object, error) {
	data, err := d.decodeStream(st)
	if err != nil {
		return nil, err
	}
	count, ok := st.Dict.integer("N")
	if !ok || count <= 0 {
		return nil, errors.New("invalid object stream count")
	}
	first, ok := st.Dict.integer("First")
	if !ok || first < 0 || first > int64(len(data)) {
		return nil, errors.New("invalid object stream First")
	}
	header := data[:first]
	body := data[first:]

	pairs := make([]int, 0, count*2)
	hl := &tokens{l: newLexer(header)}
	for int64(len(pairs)) < count*2 {
		tok, err := hl.next()
		if err != nil {
			return nil, fmt.Errorf("parse objstm header: %w", err)
		}
		if tok.typ != tokInt {
			continue
		}
		pairs = append(pairs, int(tok.i))
	}
	objects := make(map[int]Object, count)
	for i := 0; int64(i) < count; i++ {
		num, off := pairs[2*i], pairs[2*i+1]
		if off < 0 || off > len(body) {
			continue
		}
		tr := &tokens{l: newLexer(body[off:])}
		obj, err := parseValue(tr)
		if err != nil {
			return nil, fmt.Errorf("parse objstm object %d: %w", num, err)
		}
		objects[num] = obj
	}
	return objects, nil
}

// recoverTrailer fills in a usable trailer when the file had none (xref
// stream files) or when the recorded trailer lacks /Root.
func (d *Document) recoverTrailer() {
	if d.Trailer != nil {
		if _, ok := d.Trailer[Name("Root")]; ok {
			return
		}
	}
	for _, obj := range d.Objects {
		st, ok := obj.(*Stream)
		if !ok {
			continue
		}
		if typ, _ := st.Dict.name("Type"); typ == "XRef" {
			d.mergeTrailer(st.Dict)
			if _, ok := d.Trailer[Name("Root")]; ok {
				return
			}
		}
	}
	// Last resort: point /Root at a catalog found by scanning.
	for ref, obj := range d.Objects {
		if dict, ok := obj.(Dict); ok {
			if typ, _ := dict.name("Type"); typ == "Catalog" {
				d.mergeTrailer(Dict{Name("Root"): ref})
				return
			}
		}
	}
}

// Pages returns the page dictionaries in document order.
func (d *Document) Pages() ([]Dict, error) {
	catalog := d.resolveDict(d.trailerValue("Root"))
	if catalog != nil {
		root := d.resolveDict(catalog[Name("Pages")])
		if root != nil {
			var pages []Dict
			d.walkPageTree(root, &pages, 0, make(map[string]struct{}))
			if len(pages) > 0 {
				return pages, nil
			}
		}
	}
	// Damaged page tree: collect /Type /Page objects in reference order.
	var refs []Ref
	for ref, obj := range d.Objects {
		if dict, ok := obj.(Dict); ok {
			if typ, _ := dict.name("Type"); typ == "Page" {
				refs = append(refs, ref)
			}
		}
	}
	if len(refs) == 0 {
		return nil, errors.New("document has no pages")
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Num < refs[j].Num })
	pages := make([]Dict, len(refs))
	for i, ref := range refs {
		pages[i] = d.Objects[ref].(Dict)
	}
	return pages, nil
}

func (d *Document) trailerValue(key string) Object {
	if d.Trailer == nil {
		return Null{}
	}
	if v, ok := d.Trailer[Name(key)]; ok {
		return v
	}
	return Null{}
}

func (d *Document) walkPageTree(node Dict, pages *[]Dict, depth int, visited map[string]struct{}) {
	if depth > maxResolveDepth {
		return
	}
	typ, _ := node.name("Type")
	if typ == "Page" {
		*pages = append(*pages, node)
		return
	}
	kids, ok := d.Resolve(node[Name("Kids")]).(Array)
	if !ok {
		return
	}
	for _, kid := range kids {
		key := fmt.Sprintf("%v", kid)
		if ref, isRef := kid.(Ref); isRef {
			key = fmt.Sprintf("%d/%d", ref.Num, ref.Gen)
			if _, seen := visited[key]; seen {
				continue
			}
			visited[key] = struct{}{}
		}
		child := d.resolveDict(kid)
		if child == nil {
			continue
		}
		d.walkPageTree(child, pages, depth+1, visited)
	}
}

// inherited looks a key up on a page dict, walking /Parent links for
// attributes that page nodes inherit (Resources, MediaBox).
func (d *Document) inherited(page Dict, key Name) Object {
	node := page
	for depth := 0; node != nil && depth < maxResolveDepth; depth++ {
		if v, ok := node[key]; ok {
			return v
		}
		node = d.resolveDict(node[Name("Parent")])
	}
	return Null{}
}

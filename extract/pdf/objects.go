package pdf

// Object is the closed set of PDF object variants.
type Object interface{ isObject() }

type Name string

type Integer int64

type Real float64

// String holds the decoded bytes of a literal or hex string.
type String []byte

type Boolean bool

type Null struct{}

type Array []Object

type Dict map[Name]Object

// Ref is an indirect object reference ("N G R").
type Ref struct {
	Num int
	Gen int
}

// Stream pairs a stream dictionary with its still-encoded payload.
type Stream struct {
	Dict Dict
	Raw  []byte
}

func (Name) isObject()    {}
func (Integer) isObject() {}
func (Real) isObject()    {}
func (String) isObject()  {}
func (Boolean) isObject() {}
func (Null) isObject()    {}
func (Array) isObject()   {}
func (Dict) isObject()    {}
func (Ref) isObject()     {}
func (*Stream) isObject() {}

func (d Dict) name(key Name) (string, bool) {
	if v, ok := d[key]; ok {
		if n, ok := v.(Name); ok {
			return string(n), true
		}
	}
	return "", false
}

func (d Dict) integer(key Name) (int64, bool) {
	switch v := d[key].(type) {
	case Integer:
		return int64(v), true
	case Real:
		return int64(v), true
	}
	return 0, false
}

// names flattens a /Filter-style entry that may be a single name or an array
// of names.
func (d Dict) names(key Name) []string {
	switch v := d[key].(type) {
	case Name:
		return []string{string(v)}
	case Array:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if n, ok := item.(Name); ok {
				out = append(out, string(n))
			}
		}
		return out
	}
	return nil
}

// dicts flattens a /DecodeParms-style entry that may be a single dict or an
// array of dicts (with nulls for absent positions).
func (d Dict) dicts(key Name) []Dict {
	switch v := d[key].(type) {
	case Dict:
		return []Dict{v}
	case Array:
		out := make([]Dict, 0, len(v))
		for _, item := range v {
			if dd, ok := item.(Dict); ok {
				out = append(out, dd)
			} else {
				out = append(out, nil)
			}
		}
		return out
	}
	return nil
}

package pdf

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"errors"
	"fmt"
	"io"
)

// decodeStream applies the full filter chain of a stream and returns the
// decoded payload. Image codecs (DCTDecode, JPXDecode) are not handled here;
// image extraction keeps those payloads encoded.
func (d *Document) decodeStream(st *Stream) ([]byte, error) {
	data := st.Raw
	filters := st.Dict.names("Filter")
	params := st.Dict.dicts("DecodeParms")
	for i, filter := range filters {
		var parm Dict
		if i < len(params) {
			parm = params[i]
		}
		decoded, err := d.applyFilter(filter, data, parm)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filter, err)
		}
		data = decoded
	}
	return data, nil
}

func (d *Document) applyFilter(name string, data []byte, parm Dict) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return d.flateDecode(data, parm)
	case "ASCIIHexDecode", "AHx":
		return asciiHexDecode(data)
	case "ASCII85Decode", "A85":
		return ascii85Decode(data)
	case "RunLengthDecode", "RL":
		return runLengthDecode(data)
	}
	return nil, errors.New("unsupported filter")
}

func (d *Document) flateDecode(data []byte, parm Dict) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return d.applyPredictor(out, parm)
}

func (d *Document) applyPredictor(data []byte, parm Dict) ([]byte, error) {
	if parm == nil {
		return data, nil
	}
	predictor, ok := d.resolveInt(parm[Name("Predictor")])
	if !ok || predictor <= 1 {
		return data, nil
	}
	colors := int64(1)
	if v, ok := d.resolveInt(parm[Name("Colors")]); ok {
		colors = v
	}
	bpc := int64(8)
	if v, ok := d.resolveInt(parm[Name("BitsPerComponent")]); ok {
		bpc = v
	}
	columns := int64(1)
	if v, ok := d.resolveInt(parm[Name("Columns")]); ok {
		columns = v
	}
	if predictor == 2 {
		// TIFF predictor: only the 8-bit case matters in practice.
		if bpc != 8 {
			return data, nil
		}
		stride := int(colors)
		rowLen := int(columns) * stride
		for row := 0; row+rowLen <= len(data); row += rowLen {
			for i := stride; i < rowLen; i++ {
				data[row+i] += data[row+i-stride]
			}
		}
		return data, nil
	}
	if predictor >= 10 {
		return pngPredictor(data, int(colors), int(bpc), int(columns))
	}
	return nil, fmt.Errorf("unsupported predictor %d", predictor)
}

func pngPredictor(data []byte, colors, bpc, columns int) ([]byte, error) {
	bpp := (colors*bpc + 7) / 8
	rowLen := (colors*bpc*columns + 7) / 8
	if rowLen <= 0 {
		return nil, errors.New("invalid predictor row length")
	}
	full := rowLen + 1 // leading filter-type byte per row
	if len(data)%full != 0 {
		return nil, errors.New("predictor data not row aligned")
	}
	rows := len(data) / full
	out := make([]byte, 0, rows*rowLen)
	prev := make([]byte, rowLen)
	cur := make([]byte, rowLen)
	for r := 0; r < rows; r++ {
		ft := data[r*full]
		copy(cur, data[r*full+1:(r+1)*full])
		switch ft {
		case 0: // None
		case 1: // Sub
			for i := bpp; i < rowLen; i++ {
				cur[i] += cur[i-bpp]
			}
		case 2: // Up
			for i := 0; i < rowLen; i++ {
				cur[i] += prev[i]
			}
		case 3: // Average
			for i := 0; i < rowLen; i++ {
				var left byte
				if i >= bpp {
					left = cur[i-bpp]
				}
				cur[i] += byte((int(left) + int(prev[i])) / 2)
			}
		case 4: // Paeth
			for i := 0; i < rowLen; i++ {
				var left, upLeft byte
				if i >= bpp {
					left = cur[i-bpp]
					upLeft = prev[i-bpp]
				}
				cur[i] += paeth(left, prev[i], upLeft)
			}
		default:
			return nil, fmt.Errorf("unknown png filter type %d", ft)
		}
		out = append(out, cur...)
		prev, cur = cur, prev
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func asciiHexDecode(data []byte) ([]byte, error) {
	var out bytes.Buffer
	hi := -1
	for _, c := range data {
		if c == '>' {
			break
		}
		if isWhitespace(c) {
			continue
		}
		n := hexNibble(c)
		if n < 0 {
			return nil, fmt.Errorf("invalid hex digit %q", c)
		}
		if hi < 0 {
			hi = n
		} else {
			out.WriteByte(byte(hi<<4 | n))
			hi = -1
		}
	}
	if hi >= 0 {
		out.WriteByte(byte(hi << 4))
	}
	return out.Bytes(), nil
}

func ascii85Decode(data []byte) ([]byte, error) {
	if idx := bytes.Index(data, []byte("~>")); idx >= 0 {
		data = data[:idx]
	}
	out := make([]byte, ascii85.MaxEncodedLen(len(data)))
	n, _, err := ascii85.Decode(out, data, true)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

func runLengthDecode(data []byte) ([]byte, error) {
	var out bytes.Buffer
	for i := 0; i < len(data); {
		l := int(data[i])
		i++
		switch {
		case l == 128:
			return out.Bytes(), nil
		case l < 128:
			if i+l+1 > len(data) {
				return nil, errors.New("truncated literal run")
			}
			out.Write(data[i : i+l+1])
			i += l + 1
		default:
			if i >= len(data) {
				return nil, errors.New("truncated repeat run")
			}
			for n := 0; n < 257-l; n++ {
				out.WriteByte(data[i])
			}
			i++
		}
	}
	return out.Bytes(), nil
}

package pdf

import (
	"bytes"
	"image"
	"image/png"
	"sort"
)

// Image is an embedded raster image recovered from a page, re-encoded (or
// passed through) as a standard interchange format ready for OCR.
type Image struct {
	ResourceName string
	MIME         string
	Width        int
	Height       int
	Data         []byte
}

// pageImages returns the image XObjects referenced by a page's resource
// dictionary, in resource-name order for determinism. Images using codecs we
// cannot re-encode are skipped; a missing image never fails the page.
func (d *Document) pageImages(page Dict) []Image {
	res := d.resolveDict(d.inherited(page, Name("Resources")))
	if res == nil {
		return nil
	}
	xobjects := d.resolveDict(res[Name("XObject")])
	if xobjects == nil {
		return nil
	}
	names := make([]string, 0, len(xobjects))
	for name := range xobjects {
		names = append(names, string(name))
	}
	sort.Strings(names)

	var out []Image
	for _, name := range names {
		st, ok := d.Resolve(xobjects[Name(name)]).(*Stream)
		if !ok {
			continue
		}
		if subtype, _ := st.Dict.name("Subtype"); subtype != "Image" {
			continue
		}
		img, ok := d.imageFromStream(st)
		if !ok {
			continue
		}
		img.ResourceName = name
		out = append(out, img)
	}
	return out
}

func (d *Document) imageFromStream(st *Stream) (Image, bool) {
	width64, _ := st.Dict.integer("Width")
	height64, _ := st.Dict.integer("Height")
	width, height := int(width64), int(height64)
	if width <= 0 || height <= 0 {
		return Image{}, false
	}
	filters := st.Dict.names("Filter")
	if n := len(filters); n > 0 {
		switch filters[n-1] {
		case "DCTDecode", "DCT":
			// JPEG payloads are already an interchange format; pass through
			// after unwrapping any transport filters in front of the codec.
			data := st.Raw
			for i := 0; i < n-1; i++ {
				decoded, err := d.applyFilter(filters[i], data, nil)
				if err != nil {
					return Image{}, false
				}
				data = decoded
			}
			return Image{MIME: "image/jpeg", Width: width, Height: height, Data: data}, true
		case "JPXDecode", "JBIG2Decode", "CCITTFaxDecode":
			// No decoder wired for these; skip rather than fail the page.
			return Image{}, false
		}
	}
	decoded, err := d.decodeStream(st)
	if err != nil {
		return Image{}, false
	}
	bpc, _ := st.Dict.integer("BitsPerComponent")
	components := d.colorComponents(st.Dict[Name("ColorSpace")])
	img, ok := rasterize(decoded, width, height, int(bpc), components)
	if !ok {
		return Image{}, false
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, false
	}
	return Image{MIME: "image/png", Width: width, Height: height, Data: buf.Bytes()}, true
}

// colorComponents reduces a /ColorSpace entry to its component count.
// Unknown spaces report zero and the image is skipped.
func (d *Document) colorComponents(obj Object) int {
	switch v := d.Resolve(obj).(type) {
	case Name:
		switch string(v) {
		case "DeviceGray", "CalGray":
			return 1
		case "DeviceRGB", "CalRGB":
			return 3
		case "DeviceCMYK":
			return 4
		}
	case Array:
		if len(v) == 0 {
			return 0
		}
		family, ok := d.Resolve(v[0]).(Name)
		if !ok {
			return 0
		}
		switch string(family) {
		case "ICCBased":
			if len(v) >= 2 {
				if st, ok := d.Resolve(v[1]).(*Stream); ok {
					if n, ok := st.Dict.integer("N"); ok {
						return int(n)
					}
				}
			}
		case "CalGray":
			return 1
		case "CalRGB", "Lab":
			return 3
		}
	}
	return 0
}

func rasterize(data []byte, width, height, bpc, components int) (image.Image, bool) {
	switch {
	case components == 3 && bpc == 8 && len(data) >= width*height*3:
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				src := (y*width + x) * 3
				dst := img.PixOffset(x, y)
				img.Pix[dst+0] = data[src+0]
				img.Pix[dst+1] = data[src+1]
				img.Pix[dst+2] = data[src+2]
				img.Pix[dst+3] = 0xFF
			}
		}
		return img, true
	case components == 1 && bpc == 8 && len(data) >= width*height:
		img := image.NewGray(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+width], data[y*width:])
		}
		return img, true
	case components == 1 && bpc == 1:
		rowBytes := (width + 7) / 8
		if len(data) < rowBytes*height {
			return nil, false
		}
		img := image.NewGray(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				bit := data[y*rowBytes+x/8] >> (7 - uint(x%8)) & 1
				if bit == 1 {
					img.Pix[y*img.Stride+x] = 0xFF
				}
			}
		}
		return img, true
	case components == 4 && bpc == 8 && len(data) >= width*height*4:
		img := image.NewCMYK(image.Rect(0, 0, width, height))
		copy(img.Pix, data[:width*height*4])
		return img, true
	}
	return nil, false
}

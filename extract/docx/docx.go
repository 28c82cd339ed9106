// Package docx extracts body text and embedded media from DOCX (OOXML)
// archives. DOCX has no physical page concept, so the whole body is treated
// as a single logical page.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"path"
	"sort"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Media is an image recovered from the archive, normalized to PNG or passed
// through when it already is an OCR-friendly format.
type Media struct {
	Name string
	MIME string
	Data []byte
}

// Content is the extracted document: one logical page of text plus media in
// deterministic archive order.
type Content struct {
	Text  string
	Media []Media
}

// Extract opens the archive and pulls the document body text and every
// embedded image.
func Extract(data []byte) (*Content, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	text, err := bodyText(archive)
	if err != nil {
		return nil, err
	}
	return &Content{Text: text, Media: mediaFiles(archive)}, nil
}

func bodyText(archive *zip.Reader) (string, error) {
	f, err := archive.Open("word/document.xml")
	if err != nil {
		return "", errors.New("word/document.xml missing")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read document body: %w", err)
	}
	return parseBody(data)
}

// parseBody walks the WordprocessingML token stream. Text lives in <w:t>
// runs; paragraph ends, explicit breaks and tabs become separators.
func parseBody(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out strings.Builder
	var inText bool
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document body: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func mediaFiles(archive *zip.Reader) []Media {
	var names []string
	byName := make(map[string]*zip.File)
	for _, f := range archive.File {
		if strings.HasPrefix(f.Name, "word/media/") && !f.FileInfo().IsDir() {
			names = append(names, f.Name)
			byName[f.Name] = f
		}
	}
	sort.Strings(names)

	var out []Media
	for _, name := range names {
		rc, err := byName[name].Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		m, ok := normalize(name, data)
		if !ok {
			// Vector formats (EMF/WMF) and undecodable payloads are skipped;
			// they carry no OCR-able raster content we can reach.
			continue
		}
		out = append(out, m)
	}
	return out
}

func normalize(name string, data []byte) (Media, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return Media{Name: name, MIME: "image/png", Data: data}, true
	case ".jpg", ".jpeg":
		return Media{Name: name, MIME: "image/jpeg", Data: data}, true
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Media{}, false
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Media{}, false
	}
	return Media{Name: name, MIME: "image/png", Data: buf.Bytes()}, true
}

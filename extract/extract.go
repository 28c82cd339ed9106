// Package extract converts raw document bytes into the ordered page contents
// the validators consume. Each supported format is a strategy behind the
// same capability: produce pages. Extraction is purely functional over the
// input bytes.
package extract

import (
	"context"

	"github.com/wudi/evidencekit/evidence"
	"github.com/wudi/evidencekit/extract/doc"
	"github.com/wudi/evidencekit/extract/docx"
	"github.com/wudi/evidencekit/extract/pdf"
)

// Extract dispatches on the document's declared format. An unknown format
// yields UnsupportedFormatError; a corrupt payload yields ExtractionError.
// Both are fatal for the document: no partial extraction is returned.
func Extract(ctx context.Context, document evidence.Document) (*evidence.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch document.Format {
	case evidence.FormatPDF:
		return extractPDF(document)
	case evidence.FormatDOCX:
		return extractDOCX(document)
	case evidence.FormatDOC:
		return extractDOC(document)
	}
	return nil, &evidence.UnsupportedFormatError{Tag: string(document.Format)}
}

func extractPDF(document evidence.Document) (*evidence.Extraction, error) {
	pages, err := pdf.Extract(document.Data)
	if err != nil {
		return nil, &evidence.ExtractionError{Format: evidence.FormatPDF, Err: err}
	}
	out := &evidence.Extraction{Pages: make([]evidence.PageContent, 0, len(pages))}
	for _, p := range pages {
		page := evidence.PageContent{Page: p.Number, Text: p.Text}
		for i, img := range p.Images {
			page.Images = append(page.Images, evidence.Image{
				Index: i + 1,
				MIME:  img.MIME,
				Data:  img.Data,
			})
		}
		out.Pages = append(out.Pages, page)
	}
	return out, nil
}

func extractDOCX(document evidence.Document) (*evidence.Extraction, error) {
	content, err := docx.Extract(document.Data)
	if err != nil {
		return nil, &evidence.ExtractionError{Format: evidence.FormatDOCX, Err: err}
	}
	// The whole body is one logical page; every media asset belongs to it.
	page := evidence.PageContent{Page: 1, Text: content.Text}
	for i, m := range content.Media {
		page.Images = append(page.Images, evidence.Image{Index: i + 1, MIME: m.MIME, Data: m.Data})
	}
	return &evidence.Extraction{Pages: []evidence.PageContent{page}}, nil
}

func extractDOC(document evidence.Document) (*evidence.Extraction, error) {
	text, err := doc.Extract(document.Data)
	if err != nil {
		return nil, &evidence.ExtractionError{Format: evidence.FormatDOC, Err: err}
	}
	return &evidence.Extraction{
		Pages:             []evidence.PageContent{{Page: 1, Text: text}},
		ImagesUnavailable: true,
	}, nil
}

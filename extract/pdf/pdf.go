// Package pdf reads PDF documents well enough to recover per-page text and
// embedded raster images for evidence validation. It is a reader only: no
// incremental update, encryption, or writing support.
package pdf

// Page is the extracted content of one physical page.
type Page struct {
	// Number is 1-based.
	Number int
	Text   string
	Images []Image
}

// Extract parses the payload and returns the ordered page contents.
func Extract(data []byte) ([]Page, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	pageDicts, err := doc.Pages()
	if err != nil {
		return nil, err
	}
	pages := make([]Page, 0, len(pageDicts))
	for i, dict := range pageDicts {
		pages = append(pages, Page{
			Number: i + 1,
			Text:   doc.pageText(dict),
			Images: doc.pageImages(dict),
		})
	}
	return pages, nil
}

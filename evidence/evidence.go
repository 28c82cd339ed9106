// Package evidence holds the data model shared across the validation
// pipeline: the uploaded document, the per-page content produced by
// extraction, and the match results assembled into the final report.
package evidence

import (
	"strings"

	"github.com/google/uuid"
	"github.com/wudi/evidencekit/rules"
)

// Format identifies the declared container format of an uploaded document.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatDOC  Format = "doc"
)

// ParseFormat maps a format tag or filename extension to a Format. Unknown
// values yield an UnsupportedFormatError.
func ParseFormat(tag string) (Format, error) {
	t := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "."))
	switch Format(t) {
	case FormatPDF, FormatDOCX, FormatDOC:
		return Format(t), nil
	}
	return "", &UnsupportedFormatError{Tag: tag}
}

// Document is the raw input to one validation run. Immutable once received.
type Document struct {
	ID     string
	Format Format
	Data   []byte
}

// NewDocument builds a Document, assigning a fresh identifier when none is
// provided.
func NewDocument(id string, format Format, data []byte) Document {
	if id == "" {
		id = uuid.NewString()
	}
	return Document{ID: id, Format: format, Data: data}
}

// Image is a raw embedded image blob recovered from a page.
type Image struct {
	// Index is the 1-based position of the image within its page.
	Index int
	// MIME is the encoded content type, e.g. image/png or image/jpeg.
	MIME string
	Data []byte
}

// PageContent is the extracted content of one physical page. Formats without
// page boundaries (DOCX) produce a single logical page.
type PageContent struct {
	// Page is 1-based.
	Page   int
	Text   string
	Images []Image
}

// Extraction is the complete output of the document extractor.
type Extraction struct {
	Pages []PageContent
	// ImagesUnavailable is set when the format strategy cannot recover
	// embedded images at all (legacy DOC). Screenshot rules must then be
	// reported as not evaluated rather than as plain misses.
	ImagesUnavailable bool
}

// Text concatenates the page texts in page order, separated by newlines.
func (e *Extraction) Text() string {
	parts := make([]string, 0, len(e.Pages))
	for _, p := range e.Pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}

// ImageCount reports the total number of embedded images across all pages.
func (e *Extraction) ImageCount() int {
	n := 0
	for _, p := range e.Pages {
		n += len(p.Images)
	}
	return n
}

// MatchResult records the outcome of evaluating a single rule.
type MatchResult struct {
	RuleID    string     `json:"ruleId"`
	Kind      rules.Kind `json:"kind"`
	Satisfied bool       `json:"satisfied"`
	// Evidence is the verbatim corpus window or OCR snippet supporting the
	// decision; empty when nothing matched.
	Evidence string `json:"evidence,omitempty"`
	// Page is the 1-based page the evidence was found on. Nil when page
	// provenance is ambiguous (fuzzy corpus matches) or not applicable.
	Page *int `json:"pageIndex"`
	// Confidence is the matcher score on a 0-100 scale; screenshot rules only.
	Confidence *int   `json:"confidence"`
	Hint       string `json:"hint,omitempty"`
	// Note carries a diagnostic explanation for unsatisfied or skipped
	// results, e.g. "missing confirmation marker".
	Note string `json:"note,omitempty"`
	// Skipped marks rules that could not be evaluated for this document
	// (image extraction unavailable), as opposed to evaluated-and-missing.
	Skipped bool `json:"skipped,omitempty"`
}

// ValidationReport is the pipeline's sole output artifact.
type ValidationReport struct {
	DocumentID     string        `json:"documentId"`
	OverallPass    bool          `json:"overallPass"`
	SatisfiedCount int           `json:"satisfiedCount"`
	MissingCount   int           `json:"missingCount"`
	SkippedCount   int           `json:"skippedCount"`
	TotalCount     int           `json:"totalCount"`
	Results        []MatchResult `json:"results"`
}

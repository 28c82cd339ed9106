package evidence

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"pdf", FormatPDF},
		{".pdf", FormatPDF},
		{"PDF", FormatPDF},
		{".DocX", FormatDOCX},
		{" doc ", FormatDOC},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatRejectsUnknown(t *testing.T) {
	_, err := ParseFormat("xlsx")
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
	if unsupported.Tag != "xlsx" {
		t.Fatalf("tag = %q", unsupported.Tag)
	}
}

func TestNewDocumentAssignsID(t *testing.T) {
	doc := NewDocument("", FormatPDF, []byte("x"))
	if doc.ID == "" {
		t.Fatalf("expected generated id")
	}
	other := NewDocument("", FormatPDF, []byte("x"))
	if doc.ID == other.ID {
		t.Fatalf("generated ids must be unique")
	}
	named := NewDocument("upload-7", FormatDOCX, nil)
	if named.ID != "upload-7" {
		t.Fatalf("explicit id not kept: %q", named.ID)
	}
}

func TestExtractionAggregates(t *testing.T) {
	ex := Extraction{Pages: []PageContent{
		{Page: 1, Text: "first", Images: []Image{{Index: 1}, {Index: 2}}},
		{Page: 2, Text: "second", Images: []Image{{Index: 1}}},
	}}
	if got := ex.Text(); got != "first\nsecond" {
		t.Fatalf("text = %q", got)
	}
	if got := ex.ImageCount(); got != 3 {
		t.Fatalf("image count = %d", got)
	}
}

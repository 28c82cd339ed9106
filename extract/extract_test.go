package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/wudi/evidencekit/evidence"
)

func pdfWithText(text string) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n")
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /Contents 4 0 R >>\nendobj\n")
	content := fmt.Sprintf("BT (%s) Tj ET", text)
	fmt.Fprintf(buf, "4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(content), content)
	buf.WriteString("trailer\n<< /Root 1 0 R >>\n%%EOF\n")
	return buf.Bytes()
}

func docxWithText(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create body: %v", err)
	}
	fmt.Fprintf(w, `<?xml version="1.0"?><w:document xmlns:w="ns"><w:body><w:p><w:r><w:t>%s</w:t></w:r></w:p></w:body></w:document>`, text)
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func docWithText(text string) []byte {
	data := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	data = append(data, make([]byte, 32)...)
	data = append(data, []byte(text)...)
	return append(data, 0x00)
}

func TestExtractDispatchesPDF(t *testing.T) {
	doc := evidence.NewDocument("d1", evidence.FormatPDF, pdfWithText("pdf body text"))
	out, err := Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(out.Pages) != 1 || out.Pages[0].Text != "pdf body text" {
		t.Fatalf("unexpected pages: %+v", out.Pages)
	}
	if out.ImagesUnavailable {
		t.Fatalf("pdf must support image extraction")
	}
}

func TestExtractDispatchesDOCX(t *testing.T) {
	doc := evidence.NewDocument("d2", evidence.FormatDOCX, docxWithText(t, "docx body text"))
	out, err := Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(out.Pages) != 1 {
		t.Fatalf("docx must produce one logical page, got %d", len(out.Pages))
	}
	if out.Pages[0].Text != "docx body text" {
		t.Fatalf("text = %q", out.Pages[0].Text)
	}
}

func TestExtractDOCMarksImagesUnavailable(t *testing.T) {
	doc := evidence.NewDocument("d3", evidence.FormatDOC, docWithText("legacy doc body"))
	out, err := Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !out.ImagesUnavailable {
		t.Fatalf("doc extraction must mark images unavailable")
	}
	if out.Pages[0].Text == "" {
		t.Fatalf("expected scraped text")
	}
}

func TestExtractWrapsCorruptPayload(t *testing.T) {
	doc := evidence.NewDocument("d4", evidence.FormatPDF, []byte("garbage, not a pdf"))
	_, err := Extract(context.Background(), doc)
	var extractionErr *evidence.ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if extractionErr.Format != evidence.FormatPDF {
		t.Fatalf("error format = %q", extractionErr.Format)
	}
}

func TestExtractRejectsUnknownFormat(t *testing.T) {
	doc := evidence.Document{ID: "d5", Format: "xls", Data: []byte("x")}
	_, err := Extract(context.Background(), doc)
	var unsupported *evidence.UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
}

func TestExtractHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := evidence.NewDocument("d6", evidence.FormatPDF, pdfWithText("x"))
	if _, err := Extract(ctx, doc); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

package doc

import (
	"strings"
	"testing"
	"unicode/utf16"
)

func olePayload(tail []byte) []byte {
	data := append([]byte(nil), oleSignature...)
	// Structural noise between signature and text, as in real containers.
	data = append(data, make([]byte, 64)...)
	return append(data, tail...)
}

func utf16le(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2)
	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

func TestExtractRejectsNonOLE(t *testing.T) {
	if _, err := Extract([]byte("PK\x03\x04 this is a zip")); err == nil {
		t.Fatalf("expected error for non-OLE payload")
	}
	if _, err := Extract(nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestExtractRecoversANSIText(t *testing.T) {
	payload := olePayload([]byte("\x00\x01Database records cleared (YES)\x00\x05Audit trail attached\x00"))
	got, err := Extract(payload)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(got, "Database records cleared (YES)") {
		t.Fatalf("ansi run missing: %q", got)
	}
	if !strings.Contains(got, "Audit trail attached") {
		t.Fatalf("second run missing: %q", got)
	}
}

func TestExtractPrefersRicherUTF16Harvest(t *testing.T) {
	wide := utf16le("Integration evidence collected during the audit window")
	payload := olePayload(append([]byte("ok\x00\x00"), wide...))
	got, err := Extract(payload)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(got, "Integration evidence collected") {
		t.Fatalf("utf16 text missing: %q", got)
	}
}

func TestExtractDropsShortNoiseRuns(t *testing.T) {
	payload := olePayload([]byte("\x00ab\x00cd\x00A meaningful sentence survives\x00"))
	got, err := Extract(payload)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if strings.Contains(got, "ab") && !strings.Contains(got, "meaningful") {
		t.Fatalf("noise kept over content: %q", got)
	}
	if !strings.Contains(got, "A meaningful sentence survives") {
		t.Fatalf("content missing: %q", got)
	}
}

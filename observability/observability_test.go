package observability

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTextLoggerWritesKeyValueLines(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, LevelInfo)

	log.Info("extraction done", Int("pages", 3), String("format", "pdf"))
	line := buf.String()
	if !strings.Contains(line, "INFO extraction done") {
		t.Fatalf("line = %q", line)
	}
	if !strings.Contains(line, "pages=3") || !strings.Contains(line, "format=pdf") {
		t.Fatalf("fields missing: %q", line)
	}
}

func TestTextLoggerLevelGate(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, LevelWarn)

	log.Debug("hidden")
	log.Info("also hidden")
	log.Error("visible", Error("err", errors.New("boom")))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("gated levels leaked: %q", out)
	}
	if !strings.Contains(out, "ERROR visible") || !strings.Contains(out, "err=boom") {
		t.Fatalf("error line missing: %q", out)
	}
}

func TestTextLoggerWithBindsFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, LevelInfo).With(String("document", "d-1"))

	log.Info("stage", Duration("took", 20*time.Millisecond))
	if !strings.Contains(buf.String(), "document=d-1") {
		t.Fatalf("bound field missing: %q", buf.String())
	}
}

func TestTextLoggerConcurrentUse(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, LevelInfo)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				log.Info("tick")
			}
		}()
	}
	wg.Wait()
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 400 {
		t.Fatalf("expected 400 lines, got %d", len(lines))
	}
}

func TestCaptureLoggerRecords(t *testing.T) {
	c := &CaptureLogger{}
	c.Warn("ocr failed", Int("page", 2))
	c.Info("done")

	msgs := c.Messages()
	if len(msgs) != 2 || msgs[0] != "ocr failed" || msgs[1] != "done" {
		t.Fatalf("messages = %v", msgs)
	}
	if c.Entries[0].Level != LevelWarn {
		t.Fatalf("level = %v", c.Entries[0].Level)
	}
	if c.Entries[0].Fields["page"] != 2 {
		t.Fatalf("fields = %v", c.Entries[0].Fields)
	}
}

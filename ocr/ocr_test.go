package ocr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingEngine struct {
	calls int
	text  string
	err   error
}

func (e *countingEngine) Name() string { return "counting" }

func (e *countingEngine) Recognize(_ context.Context, in Input) (Result, error) {
	e.calls++
	if e.err != nil {
		return Result{}, e.err
	}
	return Result{InputID: in.ID, PlainText: e.text}, nil
}

func TestMemoizeRecognizesIdenticalImagesOnce(t *testing.T) {
	inner := &countingEngine{text: "recognized"}
	engine := Memoize(inner)

	for i := 0; i < 5; i++ {
		res, err := engine.Recognize(context.Background(), Input{ID: "a", Image: []byte("same bytes")})
		if err != nil {
			t.Fatalf("recognize failed: %v", err)
		}
		if res.PlainText != "recognized" {
			t.Fatalf("text = %q", res.PlainText)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("inner engine called %d times, want 1", inner.calls)
	}

	if _, err := engine.Recognize(context.Background(), Input{Image: []byte("different bytes")}); err != nil {
		t.Fatalf("recognize failed: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("inner engine called %d times, want 2", inner.calls)
	}
}

// slowEngine stalls in Recognize long enough for duplicate submissions to
// overlap, counting calls race-safely.
type slowEngine struct {
	calls atomic.Int32
	delay time.Duration
	text  string
}

func (e *slowEngine) Name() string { return "slow" }

func (e *slowEngine) Recognize(_ context.Context, in Input) (Result, error) {
	e.calls.Add(1)
	time.Sleep(e.delay)
	return Result{InputID: in.ID, PlainText: e.text}, nil
}

func TestMemoizeCoalescesConcurrentIdenticalImages(t *testing.T) {
	inner := &slowEngine{delay: 100 * time.Millisecond, text: "recognized"}
	engine := Memoize(inner)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := engine.Recognize(context.Background(), Input{Image: []byte("same bytes")})
			if err != nil {
				t.Errorf("recognize failed: %v", err)
				return
			}
			if res.PlainText != "recognized" {
				t.Errorf("text = %q", res.PlainText)
			}
		}()
	}
	wg.Wait()
	if got := inner.calls.Load(); got != 1 {
		t.Fatalf("identical image recognized %d times in one run, want 1", got)
	}
}

func TestMemoizeCachesFailures(t *testing.T) {
	sentinel := errors.New("ocr backend down")
	inner := &countingEngine{err: sentinel}
	engine := Memoize(inner)

	for i := 0; i < 3; i++ {
		if _, err := engine.Recognize(context.Background(), Input{Image: []byte("img")}); !errors.Is(err, sentinel) {
			t.Fatalf("expected sentinel error, got %v", err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("failed recognition retried %d times, want 1", inner.calls)
	}
}

func TestMemoizeEchoesCallerInputID(t *testing.T) {
	engine := Memoize(&countingEngine{text: "x"})
	if _, err := engine.Recognize(context.Background(), Input{ID: "first", Image: []byte("img")}); err != nil {
		t.Fatalf("recognize failed: %v", err)
	}
	res, err := engine.Recognize(context.Background(), Input{ID: "second", Image: []byte("img")})
	if err != nil {
		t.Fatalf("recognize failed: %v", err)
	}
	if res.InputID != "second" {
		t.Fatalf("cached result must echo the caller's id, got %q", res.InputID)
	}
}

func TestNoopEngineRecognizesNothing(t *testing.T) {
	res, err := NoopEngine{}.Recognize(context.Background(), Input{ID: "n", Image: []byte("img")})
	if err != nil {
		t.Fatalf("noop failed: %v", err)
	}
	if res.PlainText != "" {
		t.Fatalf("noop produced text %q", res.PlainText)
	}
	if res.InputID != "n" {
		t.Fatalf("input id not echoed: %q", res.InputID)
	}
}

func TestInputOptions(t *testing.T) {
	in := Input{}
	WithLanguages("eng", "deu")(&in)
	WithMetadata(map[string]string{"tessedit_pageseg_mode": "6"})(&in)
	if len(in.Languages) != 2 || in.Languages[0] != "eng" {
		t.Fatalf("languages = %v", in.Languages)
	}
	if in.Metadata["tessedit_pageseg_mode"] != "6" {
		t.Fatalf("metadata = %v", in.Metadata)
	}
}

// Package ocr defines the abstraction for plugging OCR engines into the
// evidence pipeline. The contract is intentionally small: encoded image
// bytes in, recognized plain text out. Engines can be backed by native
// libraries (Tesseract), remote services, or test doubles returning canned
// text.
package ocr

import (
	"context"
	"crypto/sha256"
	"sync"
)

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
	ImageFormatTIFF ImageFormat = "image/tiff"
)

// Input encapsulates a single image submitted for OCR.
type Input struct {
	// ID is an optional caller-provided identifier echoed back in the Result.
	ID string
	// Image is the encoded image payload in the format specified by Format.
	Image []byte
	// Format declares the image content type (e.g., image/png).
	Format ImageFormat
	// Page links the input back to the 1-based page the image came from.
	Page int
	// Languages is a list of language hints (e.g., "eng") that providers can
	// use to select trained data.
	Languages []string
	// Metadata passes engine-specific knobs (e.g., "tessedit_pageseg_mode")
	// without hard-coding them into the API surface.
	Metadata map[string]string
}

// Result captures OCR output for a single input image.
type Result struct {
	// InputID mirrors the Input.ID that produced this result.
	InputID string
	// PlainText contains the linearized text extracted from the image.
	// Empty when the image holds no recognizable text.
	PlainText string
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// InputOption mutates an OCR input before submission.
type InputOption func(*Input)

// WithLanguages sets language hints on the OCR input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithMetadata sets provider-specific metadata for the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// NoopEngine recognizes nothing. It is the default when no engine is wired,
// keeping the pipeline runnable in environments without Tesseract.
type NoopEngine struct{}

func (NoopEngine) Name() string { return "noop" }

func (NoopEngine) Recognize(_ context.Context, in Input) (Result, error) {
	return Result{InputID: in.ID}, nil
}

// Memoize wraps an engine so that identical image bytes are recognized at
// most once, even when the same bytes are submitted concurrently: the first
// caller performs the OCR call and later callers wait for its result. The
// cache lives for the lifetime of the wrapper, which the pipeline scopes to
// a single validation run.
func Memoize(engine Engine) Engine {
	return &memoEngine{inner: engine, cache: make(map[[sha256.Size]byte]*memoEntry)}
}

type memoEntry struct {
	done chan struct{} // closed once text and err are set
	text string
	err  error
}

type memoEngine struct {
	inner Engine
	mu    sync.Mutex
	cache map[[sha256.Size]byte]*memoEntry
}

func (m *memoEngine) Name() string { return m.inner.Name() }

func (m *memoEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	key := sha256.Sum256(in.Image)
	m.mu.Lock()
	entry, ok := m.cache[key]
	if !ok {
		entry = &memoEntry{done: make(chan struct{})}
		m.cache[key] = entry
	}
	m.mu.Unlock()

	if ok {
		// Another caller owns the recognition for these bytes.
		select {
		case <-entry.done:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	} else {
		res, err := m.inner.Recognize(ctx, in)
		entry.text, entry.err = res.PlainText, err
		close(entry.done)
	}

	if entry.err != nil {
		return Result{}, entry.err
	}
	return Result{InputID: in.ID, PlainText: entry.text}, nil
}

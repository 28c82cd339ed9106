// Package tesseract provides the default OCR engine, backed by the gosseract
// client. It requires the Tesseract native library at build and run time.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/wudi/evidencekit/ocr"
)

// Engine implements ocr.Engine using gosseract.
type Engine struct {
	clientFactory func() *gosseract.Client
	languages     []string
}

// Option configures the engine.
type Option func(*Engine)

// WithDefaultLanguages sets language hints applied when an input carries none.
func WithDefaultLanguages(langs ...string) Option {
	return func(e *Engine) { e.languages = append([]string(nil), langs...) }
}

// New constructs a Tesseract-backed OCR engine.
func New(opts ...Option) *Engine {
	e := &Engine{clientFactory: gosseract.NewClient}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single image input. A fresh client is created
// per call; the pipeline's memoizing wrapper keeps repeated images cheap.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	select {
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	default:
	}
	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	langs := in.Languages
	if len(langs) == 0 {
		langs = e.languages
	}
	if len(langs) > 0 {
		if err := c.SetLanguage(langs...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}
	return ocr.Result{InputID: in.ID, PlainText: strings.TrimSpace(text)}, nil
}

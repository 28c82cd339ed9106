// Package screenshot evaluates screenshot rules by running OCR over every
// embedded image and fuzzy-matching the recognized text against each rule's
// expectation phrases. OCR noise makes exact matching useless, so scoring
// uses partial-ratio similarity on a 0-100 scale.
package screenshot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/wudi/evidencekit/evidence"
	"github.com/wudi/evidencekit/observability"
	"github.com/wudi/evidencekit/ocr"
	"github.com/wudi/evidencekit/rules"
	"github.com/wudi/evidencekit/validate"
)

// DefaultThreshold is the similarity score a match must reach when neither
// the rule nor the run configuration overrides it.
const DefaultThreshold = 78

// NoteImagesUnavailable marks screenshot rules that could not be evaluated
// because the document format offers no image extraction (legacy DOC).
const NoteImagesUnavailable = "not evaluated: image extraction is unavailable for this document format"

const noteNoImages = "document contains no embedded images"

// snippetLimit bounds the OCR text carried as evidence.
const snippetLimit = 160

// Options configures one analysis run.
type Options struct {
	// Engine performs OCR. Nil selects the no-op engine, which recognizes
	// nothing; production callers wire the tesseract engine.
	Engine ocr.Engine
	// DefaultThreshold overrides DefaultThreshold when positive.
	DefaultThreshold int
	// Workers bounds concurrent OCR calls. OCR is CPU-heavy; unbounded
	// fan-out would thrash. Zero selects a small default.
	Workers int
	// Languages are hints passed to the OCR engine.
	Languages []string
	Logger    observability.Logger
}

func (o Options) engine() ocr.Engine {
	if o.Engine == nil {
		return ocr.NoopEngine{}
	}
	return o.Engine
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return 4
	}
	return o.Workers
}

func (o Options) threshold() int {
	if o.DefaultThreshold <= 0 {
		return DefaultThreshold
	}
	return o.DefaultThreshold
}

func (o Options) logger() observability.Logger {
	if o.Logger == nil {
		return observability.NopLogger{}
	}
	return o.Logger
}

type imageText struct {
	page  int
	index int
	text  string // normalized OCR output, empty when unreadable
	raw   string
}

// Analyze evaluates every screenshot-kind rule in set order. Rules of other
// kinds are ignored. Per-image OCR failures are absorbed as empty text and
// never abort the run; only context cancellation returns an error.
func Analyze(ctx context.Context, extraction *evidence.Extraction, set rules.Set, opts Options) ([]evidence.MatchResult, error) {
	shots := set.OfKind(rules.KindScreenshot)
	if len(shots) == 0 {
		return nil, nil
	}
	if extraction.ImagesUnavailable {
		out := make([]evidence.MatchResult, 0, len(shots))
		for _, rule := range shots {
			out = append(out, evidence.MatchResult{
				RuleID:  rule.ID,
				Kind:    rule.Kind,
				Hint:    rule.Hint,
				Note:    NoteImagesUnavailable,
				Skipped: true,
			})
		}
		return out, nil
	}

	texts, err := recognizeAll(ctx, extraction, opts)
	if err != nil {
		return nil, err
	}

	out := make([]evidence.MatchResult, 0, len(shots))
	for _, rule := range shots {
		out = append(out, matchRule(rule, texts, opts.threshold()))
	}
	return out, nil
}

// recognizeAll OCRs every embedded image with a bounded worker pool. The
// engine is wrapped so identical image bytes are recognized only once per
// run.
func recognizeAll(ctx context.Context, extraction *evidence.Extraction, opts Options) ([]imageText, error) {
	type job struct {
		slot  int
		page  int
		index int
		image evidence.Image
	}
	var jobs []job
	for _, page := range extraction.Pages {
		for _, img := range page.Images {
			jobs = append(jobs, job{slot: len(jobs), page: page.Page, index: img.Index, image: img})
		}
	}
	texts := make([]imageText, len(jobs))
	if len(jobs) == 0 {
		return texts, nil
	}

	engine := ocr.Memoize(opts.engine())
	log := opts.logger()
	sem := make(chan struct{}, opts.workers())
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			res, err := engine.Recognize(ctx, ocr.Input{
				ID:        fmt.Sprintf("page-%d-image-%d", j.page, j.index),
				Image:     j.image.Data,
				Format:    ocr.ImageFormat(j.image.MIME),
				Page:      j.page,
				Languages: opts.Languages,
			})
			if err != nil {
				// Unreadable image: contributes empty text, never aborts.
				log.Warn("ocr failed", observability.Int("page", j.page),
					observability.Int("image", j.index), observability.Error("err", err))
				texts[j.slot] = imageText{page: j.page, index: j.index}
				return
			}
			texts[j.slot] = imageText{
				page:  j.page,
				index: j.index,
				text:  validate.Normalize(res.PlainText),
				raw:   res.PlainText,
			}
		}(j)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return texts, nil
}

// matchRule scores the rule against every image and keeps the single best
// match, even when an earlier image already cleared the threshold: the
// report should carry the strongest evidence available. Images arrive in
// page then in-page order, and only strictly better scores displace the
// current best, which yields the (score desc, page asc, index asc)
// tie-break.
func matchRule(rule rules.Rule, texts []imageText, defaultThreshold int) evidence.MatchResult {
	res := evidence.MatchResult{RuleID: rule.ID, Kind: rule.Kind, Hint: rule.Hint}
	if len(texts) == 0 {
		res.Note = noteNoImages
		return res
	}
	threshold := rule.Threshold
	if threshold == 0 {
		threshold = defaultThreshold
	}
	best := -1
	var bestText imageText
	for _, t := range texts {
		score := scoreAgainst(rule, t.text)
		if score > best {
			best = score
			bestText = t
		}
	}
	res.Confidence = &best
	if best >= threshold {
		res.Satisfied = true
		page := bestText.page
		res.Page = &page
		res.Evidence = shorten(bestText.raw)
	} else {
		res.Note = fmt.Sprintf("best similarity %d below threshold %d", best, threshold)
	}
	return res
}

// scoreAgainst computes the rule's similarity score for one image's OCR
// text: the weakest required phrase bounds the score, the strongest
// alternative phrase lifts it.
func scoreAgainst(rule rules.Rule, text string) int {
	if text == "" {
		return 0
	}
	score := 100
	for _, phrase := range rule.Phrases {
		s := fuzzy.PartialRatio(validate.Normalize(phrase), text)
		if s < score {
			score = s
		}
	}
	if len(rule.AnyPhrases) > 0 {
		bestAny := 0
		for _, phrase := range rule.AnyPhrases {
			if s := fuzzy.PartialRatio(validate.Normalize(phrase), text); s > bestAny {
				bestAny = s
			}
		}
		if bestAny < score {
			score = bestAny
		}
	}
	return score
}

func shorten(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= snippetLimit {
		return s
	}
	// Back the cut off to a rune boundary so a multibyte character at the
	// edge is dropped whole, not split.
	cut := snippetLimit - 1
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

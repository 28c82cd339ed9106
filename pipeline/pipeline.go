// Package pipeline orchestrates one validation run: extract the document,
// evaluate text rules and screenshot rules concurrently, and assemble the
// report. The pipeline owns sequencing and failure semantics; all domain
// logic lives in the stage packages.
package pipeline

import (
	"context"
	"time"

	"github.com/wudi/evidencekit/evidence"
	"github.com/wudi/evidencekit/extract"
	"github.com/wudi/evidencekit/observability"
	"github.com/wudi/evidencekit/ocr"
	"github.com/wudi/evidencekit/report"
	"github.com/wudi/evidencekit/rules"
	"github.com/wudi/evidencekit/screenshot"
	"github.com/wudi/evidencekit/validate"
)

// Stage names one phase of a run, in the order phases occur.
type Stage string

const (
	StageReceived   Stage = "received"
	StageExtracting Stage = "extracting"
	StageEvaluating Stage = "evaluating"
	StageAssembling Stage = "assembling"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// Options configures a Pipeline. The zero value is usable: no OCR engine,
// built-in defaults for workers and threshold, silent logging.
type Options struct {
	// Engine performs OCR for screenshot rules. Nil leaves screenshot rules
	// unmatched (the no-op engine recognizes nothing).
	Engine ocr.Engine
	// DefaultThreshold is the screenshot similarity threshold applied when a
	// rule does not carry its own.
	DefaultThreshold int
	// Workers bounds concurrent OCR calls.
	Workers int
	// Languages are OCR language hints.
	Languages []string
	Logger    observability.Logger
	// OnStage, when set, observes stage transitions. Called synchronously
	// from the run goroutine.
	OnStage func(documentID string, stage Stage)
}

// Pipeline runs validations. Safe for concurrent use; each run gets its own
// OCR memoization scope.
type Pipeline struct {
	rules rules.Set
	opts  Options
	log   observability.Logger
}

// New builds a Pipeline over a validated rule set.
func New(set rules.Set, opts Options) (*Pipeline, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Pipeline{rules: set, opts: opts, log: log}, nil
}

// Rules returns the rule set the pipeline evaluates.
func (p *Pipeline) Rules() rules.Set { return p.rules }

func (p *Pipeline) stage(id string, s Stage) {
	if p.opts.OnStage != nil {
		p.opts.OnStage(id, s)
	}
}

// Run validates one document. It returns a report only on full success:
// extraction failure, OCR-stage cancellation, or context cancellation yield
// a nil report and the error. Rule misses are not errors; they are report
// content.
func (p *Pipeline) Run(ctx context.Context, document evidence.Document) (*evidence.ValidationReport, error) {
	log := p.log.With(observability.String("document", document.ID),
		observability.String("format", string(document.Format)))
	p.stage(document.ID, StageReceived)

	p.stage(document.ID, StageExtracting)
	started := time.Now()
	extraction, err := extract.Extract(ctx, document)
	if err != nil {
		p.stage(document.ID, StageFailed)
		log.Error("extraction failed", observability.Error("err", err))
		return nil, err
	}
	log.Info("extracted",
		observability.Duration(observability.MetricExtractTime, time.Since(started)),
		observability.Int(observability.MetricPageCount, len(extraction.Pages)),
		observability.Int(observability.MetricImageCount, extraction.ImageCount()))

	p.stage(document.ID, StageEvaluating)
	// Text evaluation is pure and fast; screenshot analysis does OCR. They
	// share nothing beyond the extraction, so run them side by side.
	textCh := make(chan []evidence.MatchResult, 1)
	go func() {
		started := time.Now()
		results := validate.Validate(extraction.Pages, p.rules)
		log.Debug("validated",
			observability.Duration(observability.MetricValidateTime, time.Since(started)),
			observability.Int("results", len(results)))
		textCh <- results
	}()

	started = time.Now()
	shotResults, err := screenshot.Analyze(ctx, extraction, p.rules, screenshot.Options{
		Engine:           p.opts.Engine,
		DefaultThreshold: p.opts.DefaultThreshold,
		Workers:          p.opts.Workers,
		Languages:        p.opts.Languages,
		Logger:           log,
	})
	textResults := <-textCh
	if err != nil {
		p.stage(document.ID, StageFailed)
		log.Error("screenshot analysis aborted", observability.Error("err", err))
		return nil, err
	}
	log.Debug("analyzed",
		observability.Duration(observability.MetricAnalyzeTime, time.Since(started)),
		observability.Int("results", len(shotResults)))
	if err := ctx.Err(); err != nil {
		p.stage(document.ID, StageFailed)
		return nil, err
	}

	p.stage(document.ID, StageAssembling)
	rep := report.Assemble(document.ID, p.rules, append(textResults, shotResults...))
	p.stage(document.ID, StageCompleted)
	log.Info("completed",
		observability.Int("satisfied", rep.SatisfiedCount),
		observability.Int("missing", rep.MissingCount),
		observability.Int("skipped", rep.SkippedCount),
		observability.String("verdict", verdict(rep.OverallPass)))
	return &rep, nil
}

func verdict(pass bool) string {
	if pass {
		return "pass"
	}
	return "fail"
}

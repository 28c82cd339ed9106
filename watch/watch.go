// Package watch runs the pipeline in inbox mode: documents dropped into a
// directory are validated as they appear and the resulting runs are handed
// to a sink (normally the SQLite store).
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wudi/evidencekit/evidence"
	"github.com/wudi/evidencekit/observability"
	"github.com/wudi/evidencekit/pipeline"
	"github.com/wudi/evidencekit/store"
)

// settleDelay is how long a file must stay quiet after its last write event
// before it is read. Uploads are not atomic; reading too early yields a
// truncated document.
const settleDelay = 500 * time.Millisecond

// Sink receives completed runs.
type Sink interface {
	Save(ctx context.Context, run store.Run) error
}

// Watcher validates documents appearing in an inbox directory.
type Watcher struct {
	dir  string
	pipe *pipeline.Pipeline
	sink Sink
	log  observability.Logger

	settle time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger installs a logger.
func WithLogger(log observability.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// WithSettleDelay overrides the write-quiet period before a file is read.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// New builds a Watcher over an existing directory.
func New(dir string, pipe *pipeline.Pipeline, sink Sink, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "watch", Path: dir, Err: os.ErrInvalid}
	}
	w := &Watcher{dir: dir, pipe: pipe, sink: sink, log: observability.NopLogger{}, settle: settleDelay}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run processes existing inbox files, then watches for new ones until the
// context is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return err
	}

	// Drain what is already there before reacting to events.
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.process(ctx, filepath.Join(w.dir, entry.Name()))
	}

	// pending tracks files with recent write activity and their settle
	// deadline.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				delete(pending, event.Name)
				continue
			}
			pending[event.Name] = time.Now().Add(w.settle)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", observability.Error("err", err))
		case now := <-ticker.C:
			for path, deadline := range pending {
				if now.Before(deadline) {
					continue
				}
				delete(pending, path)
				w.process(ctx, path)
			}
		}
	}
}

// process validates one inbox file. Failures are logged and swallowed: one
// bad upload must not stop the inbox.
func (w *Watcher) process(ctx context.Context, path string) {
	log := w.log.With(observability.String("path", path))
	format, err := evidence.ParseFormat(filepath.Ext(path))
	if err != nil {
		log.Debug("ignoring file with unsupported extension")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("read failed", observability.Error("err", err))
		return
	}
	doc := evidence.NewDocument(documentID(path), format, data)
	rep, err := w.pipe.Run(ctx, doc)
	if err != nil {
		log.Warn("validation failed", observability.Error("err", err))
		return
	}
	run := store.Run{
		DocumentID:  doc.ID,
		Format:      doc.Format,
		CompletedAt: time.Now().UTC(),
		Report:      *rep,
	}
	if err := w.sink.Save(ctx, run); err != nil {
		log.Error("save failed", observability.Error("err", err))
		return
	}
	log.Info("validated",
		observability.String("document", doc.ID),
		observability.Int("satisfied", rep.SatisfiedCount),
		observability.Int("missing", rep.MissingCount))
}

// documentID derives a stable identifier from the file name.
func documentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

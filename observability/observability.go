// Package observability provides the logging abstraction used across the
// evidence pipeline. Library packages accept a Logger and default to the
// no-op implementation; binaries install the text logger.
package observability

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type durationField struct {
	key string
	val time.Duration
}

func (f durationField) Key() string        { return f.key }
func (f durationField) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field             { return stringField{key, value} }
func Int(key string, value int) Field            { return intField{key, value} }
func Duration(key string, d time.Duration) Field { return durationField{key, d} }
func Error(key string, err error) Field          { return errorField{key, err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// Level gates text logger output.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// NewTextLogger returns a Logger that writes timestamped key=value lines to w.
// Safe for concurrent use.
func NewTextLogger(w io.Writer, min Level) Logger {
	return &textLogger{w: w, min: min, mu: &sync.Mutex{}}
}

type textLogger struct {
	w     io.Writer
	min   Level
	mu    *sync.Mutex
	bound []Field
}

func (l *textLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, "DEBUG", msg, fields) }
func (l *textLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, "INFO", msg, fields) }
func (l *textLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, "WARN", msg, fields) }
func (l *textLogger) Error(msg string, fields ...Field) { l.log(LevelError, "ERROR", msg, fields) }

func (l *textLogger) With(fields ...Field) Logger {
	bound := append(append([]Field(nil), l.bound...), fields...)
	return &textLogger{w: l.w, min: l.min, mu: l.mu, bound: bound}
}

func (l *textLogger) log(lv Level, tag, msg string, fields []Field) {
	if lv < l.min {
		return
	}
	var b strings.Builder
	b.WriteString(time.Now().UTC().Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(tag)
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, f := range append(append([]Field(nil), l.bound...), fields...) {
		fmt.Fprintf(&b, " %s=%v", f.Key(), f.Value())
	}
	b.WriteByte('\n')
	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.w, b.String())
}

// CaptureLogger records entries so tests can assert on emitted log lines.
type CaptureLogger struct {
	mu      sync.Mutex
	Entries []CapturedEntry
}

type CapturedEntry struct {
	Level   Level
	Message string
	Fields  map[string]interface{}
}

func (c *CaptureLogger) record(lv Level, msg string, fields []Field) {
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		m[f.Key()] = f.Value()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Entries = append(c.Entries, CapturedEntry{Level: lv, Message: msg, Fields: m})
}

func (c *CaptureLogger) Debug(msg string, fields ...Field) { c.record(LevelDebug, msg, fields) }
func (c *CaptureLogger) Info(msg string, fields ...Field)  { c.record(LevelInfo, msg, fields) }
func (c *CaptureLogger) Warn(msg string, fields ...Field)  { c.record(LevelWarn, msg, fields) }
func (c *CaptureLogger) Error(msg string, fields ...Field) { c.record(LevelError, msg, fields) }
func (c *CaptureLogger) With(...Field) Logger              { return c }

// Messages returns the recorded messages in order.
func (c *CaptureLogger) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Message
	}
	return out
}

// Standard metric names emitted by the pipeline.
const (
	MetricExtractTime  = "evidence.extract.duration"
	MetricValidateTime = "evidence.validate.duration"
	MetricAnalyzeTime  = "evidence.analyze.duration"
	MetricOCRTime      = "evidence.ocr.duration"
	MetricPageCount    = "evidence.pages.count"
	MetricImageCount   = "evidence.images.count"
)

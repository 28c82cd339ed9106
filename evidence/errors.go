package evidence

import "fmt"

// UnsupportedFormatError reports a document format the extractor has no
// strategy for. Fatal and caller-visible; no report is produced.
type UnsupportedFormatError struct {
	Tag string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format %q", e.Tag)
}

// ExtractionError reports corrupt or unparseable input. Fatal for the
// document it occurred on; callers must surface a distinct "could not
// process" outcome rather than a failed checklist.
type ExtractionError struct {
	Format Format
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s document: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

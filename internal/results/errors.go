package results

import (
	"errors"
	"fmt"
)

// ErrDataLoad matches every DataLoadError via errors.Is.
var ErrDataLoad = errors.New("data load error")

// LoadErrorKind classifies why a results file could not be loaded.
type LoadErrorKind string

const (
	LoadErrorMissing LoadErrorKind = "missing"
	LoadErrorEmpty   LoadErrorKind = "empty"
	LoadErrorShape   LoadErrorKind = "shape"
	LoadErrorValue   LoadErrorKind = "value"
	LoadErrorRead    LoadErrorKind = "read"
)

// DataLoadError reports a results file that is missing, empty or malformed.
type DataLoadError struct {
	Kind   LoadErrorKind
	Path   string
	Line   int
	Column string
	Err    error
}

// Error formats the failure with its file position when known.
func (e *DataLoadError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("load %s: %s", e.Path, e.Kind)
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" column %s", e.Column)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying error.
func (e *DataLoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is(err, ErrDataLoad) match any DataLoadError.
func (e *DataLoadError) Is(target error) bool {
	return target == ErrDataLoad
}

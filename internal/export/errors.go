package export

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for unknown export formats
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrEmptyOutput is returned when an exporter produced no bytes
	ErrEmptyOutput = errors.New("exporter produced no output")

	// ErrRenderPanic wraps a recovered panic from a rendering library
	ErrRenderPanic = errors.New("rendering panicked")
)

// Error is the single failure surfaced for an export attempt
type Error struct {
	ReportID string
	Format   Format
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export %s report %s: %v", e.Format, e.ReportID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the text shown to the person who requested the export
func (e *Error) UserMessage() string {
	return fmt.Sprintf("Failed to generate the %s report. Please try again.", strings.ToUpper(string(e.Format)))
}

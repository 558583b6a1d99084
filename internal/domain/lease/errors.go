package lease

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrMalformedDate is returned when a date input is not YYYY-MM-DD
	ErrMalformedDate = errors.New("malformed date")

	// ErrMalformedAmount is returned when a money input is not numeric
	ErrMalformedAmount = errors.New("malformed amount")

	// ErrMalformedNumber is returned when an integer input is not numeric
	ErrMalformedNumber = errors.New("malformed number")

	// ErrUnknownField is returned for draft edits to unrecognized fields
	ErrUnknownField = errors.New("unknown draft field")
)

// FieldErrors maps a form field name to its validation message.
// A non-empty FieldErrors blocks submission.
type FieldErrors map[string]string

// Error implements error with a deterministic field order
func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for field, keeping the first one reported
func (fe FieldErrors) Add(field, msg string) {
	if _, exists := fe[field]; !exists {
		fe[field] = msg
	}
}

// Merge copies other's entries into fe
func (fe FieldErrors) Merge(other FieldErrors) {
	for k, v := range other {
		fe.Add(k, v)
	}
}

// OrNil returns nil when there are no errors so callers can return it directly
func (fe FieldErrors) OrNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// AsFieldErrors extracts FieldErrors from err
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

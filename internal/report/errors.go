package report

import "errors"

var (
	// ErrUnknownKind is returned for report kinds the builder does not know
	ErrUnknownKind = errors.New("unknown report kind")

	// ErrInvalidDateRange is returned for missing or reversed date ranges
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrMalformedTable is returned when a document breaks the table shape rules
	ErrMalformedTable = errors.New("malformed report table")
)

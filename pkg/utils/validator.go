package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred        = decimal.NewFromInt(100)
	controlChars   = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	fileNameUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	underscoreRuns = regexp.MustCompile(`_{2,}`)
)

// ValidatePercentage checks that a percentage lies in [0, 100]
func ValidatePercentage(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return fmt.Errorf("percentage must be between 0 and 100: %s", p.String())
	}
	return nil
}

// ValidateNonNegative checks that an amount is zero or positive
func ValidateNonNegative(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("amount must not be negative: %s", amount.StringFixed(2))
	}
	return nil
}

// ValidateRange checks that n lies in [min, max]
func ValidateRange(n, min, max int) error {
	if n < min || n > max {
		return fmt.Errorf("value must be between %d and %d: %d", min, max, n)
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

// SanitizeFileName turns a display title into a file-system safe stem.
// Spaces become underscores; other unsafe runs collapse to a single underscore.
func SanitizeFileName(title string) string {
	s := strings.TrimSpace(SanitizeString(title))
	s = strings.ReplaceAll(s, " ", "_")
	s = fileNameUnsafe.ReplaceAllString(s, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	if s == "" {
		return "report"
	}
	return s
}

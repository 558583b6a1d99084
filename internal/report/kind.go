package report

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind selects the grouping dimension and tables of a report
type Kind string

const (
	KindIncome         Kind = "income"
	KindProperty       Kind = "property"
	KindPaymentMethods Kind = "payment_methods"
	KindCollection     Kind = "collection"
)

var kindTitles = map[Kind]string{
	KindIncome:         "Income Report",
	KindProperty:       "Property Revenue Report",
	KindPaymentMethods: "Payment Methods Report",
	KindCollection:     "Collection Report",
}

// Kinds lists the supported report kinds in display order
func Kinds() []Kind {
	return []Kind{KindIncome, KindProperty, KindPaymentMethods, KindCollection}
}

// ParseKind validates a kind string
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSpace(strings.ToLower(s)))
	if _, ok := kindTitles[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Title is the default document title for the kind
func (k Kind) Title() string {
	return kindTitles[k]
}

// labelFor turns a stored code such as "bank_transfer" into "Bank Transfer"
func labelFor(code string) string {
	if code == "" {
		return "Unspecified"
	}
	words := strings.Fields(strings.ReplaceAll(code, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

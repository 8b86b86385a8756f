// Package fixtures provides test data builders and helpers.
package fixtures

import (
	"github.com/shopspring/decimal"
)

// StringPtr returns a pointer to the given string.
func StringPtr(s string) *string {
	return &s
}

// DecimalPtr parses s and returns a pointer to the value.
// Panics on malformed input; test data only.
func DecimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

package core

// amount.go parses money-like text into an exact decimal.
//
// Separator rules, applied after dropping everything but digits, ',', '.'
// and '-':
//   - both ',' and '.' present: ',' is a thousands separator and is dropped
//   - only ',' present: every ',' becomes the decimal point
//   - otherwise the text is left as is
//
// "1,234" therefore parses as 1.234, and "1,234,567" is rejected.

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// amountNoise matches every character an amount may not contain.
var amountNoise = regexp.MustCompile(`[^\d.,-]`)

// amountShape validates cleaned amount text before decimal parsing.
var amountShape = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)$`)

// ParseAmount converts free-form amount text to an exact decimal.
// Returns false for blank or unparseable input.
func ParseAmount(s string) (*apd.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}

	cleaned := amountNoise.ReplaceAllString(s, "")
	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasDot:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	if !amountShape.MatchString(cleaned) {
		return nil, false
	}

	d, _, err := apd.NewFromString(cleaned)
	if err != nil {
		return nil, false
	}
	return d, true
}

// FormatAmount renders a decimal as plain text without an exponent,
// keeping the scale it was parsed with ("12.50" stays "12.50").
func FormatAmount(d *apd.Decimal) string {
	if d == nil {
		return ""
	}
	return d.Text('f')
}

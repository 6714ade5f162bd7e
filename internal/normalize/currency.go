// Package normalize turns string-encoded ledger values into canonical
// numeric and temporal types. Every other analytics component consumes
// only normalized values; all format knowledge lives here.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Suffix multipliers applied to shorthand amounts such as "SAR 1.08M".
// The suffix is inspected before any numerals are stripped so "1.08M"
// can never collapse to 1.08.
var suffixMultipliers = map[byte]int64{
	'K': 1_000,
	'M': 1_000_000,
}

// ParseCurrency parses a ledger currency string such as "SAR 1,234.56",
// "SAR 1.08M" or "SAR 12K" into a plain amount. The boolean is false when
// the input could not be parsed; the amount is then 0. An empty or
// whitespace-only string is a valid zero, not a parse failure.
func ParseCurrency(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}

	multiplier := int64(1)
	if last := s[len(s)-1]; last >= 'A' && last <= 'z' {
		upper := byte(strings.ToUpper(string(last))[0])
		if m, ok := suffixMultipliers[upper]; ok {
			multiplier = m
			s = strings.TrimSpace(s[:len(s)-1])
		}
	}

	// Strip a currency-code prefix: everything before the first character
	// that can start a number.
	start := strings.IndexFunc(s, func(r rune) bool {
		return (r >= '0' && r <= '9') || r == '-' || r == '+' || r == '.'
	})
	if start < 0 {
		return 0, false
	}
	s = s[start:]

	s = strings.ReplaceAll(s, ",", "")
	value, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if multiplier != 1 {
		value = value.Mul(decimal.NewFromInt(multiplier))
	}
	return value.InexactFloat64(), true
}

package normalize

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Amount parses recognized currency text into a decimal amount.
// Format examples: "5.50" -> 5.5, "1 234,56" -> 1234.56, "₽ 300" -> 300.
// Anything that does not parse yields zero, which callers treat as not importable.
func Amount(raw string) decimal.Decimal {
	clean := normalizeSeparators(digitsOnly(raw))
	if clean == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}

	return d
}

// Importable reports whether an amount may enter the review list.
func Importable(amount decimal.Decimal) bool {
	return amount.IsPositive()
}

// RoundedUnits rounds an amount to whole currency units, half away from zero.
func RoundedUnits(amount decimal.Decimal) int64 {
	return amount.Round(0).IntPart()
}

// digitsOnly strips currency text from raw. A "." or "," survives only between
// two digits so abbreviations such as "руб." or "Rs." do not read as separators.
func digitsOnly(raw string) string {
	rs := []rune(raw)

	var b strings.Builder

	for i, r := range rs {
		switch {
		case unicode.IsDigit(r), r == '-':
			b.WriteRune(r)
		case r == '.' || r == ',':
			if i > 0 && i < len(rs)-1 && unicode.IsDigit(rs[i-1]) && unicode.IsDigit(rs[i+1]) {
				b.WriteRune(r)
			}
		}
	}

	return b.String()
}

// normalizeSeparators resolves "," and "." into a single decimal point.
// The right-most separator is the decimal one when both appear; a lone comma
// is a decimal comma.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}

		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}

		return strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}

	return s
}

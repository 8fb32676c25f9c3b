/*
Package numfmt converts between the localized money/percentage text used in the
backing sheets and decimal values.

PURPOSE:
  Every monetary and percentage cell in the sheets is text in the Brazilian
  convention: "." groups thousands, "," starts the decimal part (12.345,67).
  This package is the only place that convention is known; everything else
  works with decimal.Decimal.

KEY FUNCTIONS:
  Parse:            "12.345,67" -> 12345.67 (ok=false on empty/garbage, never panics)
  Format:           12345.67    -> "12.345,67" (sign dropped; see below)
  FormatSigned:     -50         -> "-50,00"
  FormatPercent:    106.5       -> "106,50%" (no thousands grouping)
  Parenthesize:     -50         -> "(50,00)"

SIGN HANDLING:
  Format intentionally renders the absolute value. The remaining-to-target
  column shows shortfalls as "(50,00)" rather than "-50,00", so the unsigned
  formatter plus Parenthesize produces that convention. Columns that do want a
  minus sign use FormatSigned.

CONTRACT:
  Parse(FormatSigned(x)) == x rounded to 2 places, for all finite x.
  Parse("") is not ok; formatting a missing value is the caller writing "".

SEE ALSO:
  - calc/incentive.go: main consumer of these conversions
*/
package numfmt

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts localized number text to a decimal.
// Returns ok=false for empty or unparsable input. Never panics.
func Parse(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	// "12.345,67" -> "12345.67"
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Format renders the absolute value of d rounded to 2 places with "."
// thousands grouping and "," decimal separator. The sign is dropped; callers
// that need it use FormatSigned or Parenthesize.
func Format(d decimal.Decimal) string {
	return group(d.Round(2).Abs())
}

// FormatSigned is Format with a leading minus sign for negative values.
func FormatSigned(d decimal.Decimal) string {
	r := d.Round(2)
	if r.IsNegative() {
		return "-" + group(r.Abs())
	}
	return group(r)
}

// Parenthesize renders d as "(12,34)" when negative, plain Format otherwise.
func Parenthesize(d decimal.Decimal) string {
	if d.Round(2).IsNegative() {
		return "(" + Format(d) + ")"
	}
	return Format(d)
}

// FormatPercent renders a percentage value (already scaled, e.g. 106.5 for
// 106.5%) as "106,50%". The integer part is not grouped.
func FormatPercent(d decimal.Decimal) string {
	r := d.Round(2).Abs()
	intPart := r.Truncate(0)
	frac := r.Sub(intPart).Shift(2)
	out := intPart.String() + "," + pad2(frac.IntPart())
	if d.IsNegative() {
		out = "-" + out
	}
	return out + "%"
}

// group formats a non-negative decimal rounded to 2 places as
// "1.234.567,89".
func group(r decimal.Decimal) string {
	intPart := r.Truncate(0)
	frac := r.Sub(intPart).Shift(2)

	digits := intPart.String()
	var b strings.Builder
	n := len(digits)
	for i, c := range digits {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return b.String() + "," + pad2(frac.IntPart())
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + string(rune('0'+n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

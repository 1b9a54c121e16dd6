package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// cleanNumber strips currency symbols, thousands separators, percent signs
// and stray whitespace, leaving only digits, dots and minus signs.
func cleanNumber(cell string) string {
	return nonNumeric.ReplaceAllString(strings.TrimSpace(cell), "")
}

// parseFloat coerces a formatted cell like "$1,234.50" or "(12)" leftovers
// into a float. Unparseable or non-finite values collapse to zero, matching
// how the reports treat blanks.
func parseFloat(cell string) float64 {
	s := cleanNumber(cell)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parseDecimal is parseFloat for money columns. Revenue goes through
// decimal end to end so allocation shares never pick up float drift.
func parseDecimal(cell string) decimal.Decimal {
	s := cleanNumber(cell)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

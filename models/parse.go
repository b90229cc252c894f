package models

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMoney reads display-formatted currency such as "$38.40" or "1,250.00".
// Anything unparsable is worth zero; ok reports whether parsing succeeded.
func ParseMoney(s string) (value decimal.Decimal, ok bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParsePercent reads values like "94.5%" or "94.5". Unparsable input yields 0.
func ParsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ClampPercent keeps a percentage inside [0, 100].
func ClampPercent(f float64) float64 {
	return min(max(f, 0), 100)
}

package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses a numeric cell. Blank and non-numeric cells report false.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// CoerceNumber parses a numeric cell, falling back to zero
func CoerceNumber(s string) float64 {
	f, _ := ParseNumber(s)
	return f
}

// FormatNumber renders a float with the shortest exact representation so
// that identical inputs always produce identical bytes.
func FormatNumber(f float64) string {
	if f == 0 {
		// collapses -0
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// NormalizeYear renders year-like cells ("2021", "2021.0") as an integer string.
func NormalizeYear(s string) string {
	s = strings.TrimSpace(s)
	if f, ok := ParseNumber(s); ok && f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

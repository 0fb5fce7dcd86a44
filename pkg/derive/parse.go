package derive

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	leadingNumber  = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	leadingInteger = regexp.MustCompile(`^[+-]?\d+`)
)

// ParseNumberOr0 reads the longest decimal prefix of raw, ignoring leading
// whitespace, the way browsers coerce a number input ("12.5abc" is 12.5).
// Anything that does not start with a number, or overflows, reads as 0.
func ParseNumberOr0(raw string) float64 {
	trimmed := strings.TrimLeftFunc(raw, unicode.IsSpace)
	match := leadingNumber.FindString(trimmed)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0
	}
	return value
}

// ParseIntOr0 reads the leading base-10 integer of raw ("2.9" is 2, "23 staff"
// is 23). Anything else, including overflow, reads as 0.
//
// Radix prefixes are not honoured: "0x1A" reads as 0, the leading "0" before
// the "x". Headcount inputs are decimal, so hex input is treated as a typo.
func ParseIntOr0(raw string) int64 {
	trimmed := strings.TrimLeftFunc(raw, unicode.IsSpace)
	match := leadingInteger.FindString(trimmed)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// FormatAmount renders a derived currency value with two decimals.
func FormatAmount(value float64) string {
	if value == 0 {
		value = 0 // normalise negative zero
	}
	return strconv.FormatFloat(value, 'f', 2, 64)
}

// FormatCount renders a derived integer value.
func FormatCount(value int64) string {
	return strconv.FormatInt(value, 10)
}

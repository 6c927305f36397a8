// Package utils holds small helpers shared by the HTTP layer and the
// client widgets.
package utils

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// AtoiDefault parses s as a base-10 int after trimming spaces. Empty or
// malformed input yields def.
func AtoiDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampInt bounds n to [lo, hi].
func ClampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Ellipsize keeps the first max runes of s and appends "..." when anything
// was cut.
func Ellipsize(s string, max int) string {
	if max < 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

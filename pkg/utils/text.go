// Package utils provides shared logging and text helpers.
package utils

// Truncate shortens s to at most max runes, appending "..." when anything
// was cut. Rune-based so accented characters in Italian queries are never
// split mid-sequence. A non-positive max returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

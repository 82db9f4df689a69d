package utils

import "unicode/utf8"

// Truncate shortens s to at most maxLen runes, appending "..." when it cuts.
// Log previews of streamed text go through here, so it never splits a
// multi-byte character.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

// Pluralize returns singular when n is 1 and plural otherwise.
func Pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

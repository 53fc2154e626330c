package utils

import (
	"strings"
	"unicode"
)

// IsWordRune reports whether r may appear in a dictionary word: letters, digits and underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// NormalizeWord trims s, optionally lowercases it, and drops every rune that is not a word rune.
// The result may be empty when s held nothing but punctuation.
func NormalizeWord(s string, lowercase bool) string {
	s = strings.TrimSpace(s)
	if lowercase {
		s = strings.ToLower(s)
	}
	return strings.Map(func(r rune) rune {
		if IsWordRune(r) {
			return r
		}
		return -1
	}, s)
}

// NormalizePrefix prepares interactive input for a query: trimmed and, optionally, lowercased.
// Unlike NormalizeWord it keeps punctuation so the query matches the index exactly.
func NormalizePrefix(s string, lowercase bool) string {
	s = strings.TrimSpace(s)
	if lowercase {
		return strings.ToLower(s)
	}
	return s
}

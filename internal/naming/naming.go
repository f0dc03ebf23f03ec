// Package naming holds identifier heuristics shared by the classifiers.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// HasCamelPrefix reports whether name starts with the word prefix, either as
// the whole name or followed by an upper-case letter, digit or underscore.
// "isEmpty" and "is" match "is"; "issue" does not.
func HasCamelPrefix(name, prefix string) bool {
	if len(name) < len(prefix) || !strings.EqualFold(name[:len(prefix)], prefix) {
		return false
	}
	if len(name) == len(prefix) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(name[len(prefix):])
	return unicode.IsUpper(r) || unicode.IsDigit(r) || r == '_'
}

// HasSuffixFold reports whether name ends with suffix, ignoring case.
func HasSuffixFold(name, suffix string) bool {
	return len(name) >= len(suffix) && strings.EqualFold(name[len(name)-len(suffix):], suffix)
}

// IsConstant reports whether name is written in ALL_CAPS style. At least one
// letter is required and no letter may be lower case.
func IsConstant(name string) bool {
	letters := 0
	for _, r := range name {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r):
			letters++
		case r == '_' || unicode.IsDigit(r):
		default:
			return false
		}
	}
	return letters > 0
}

// Words splits a camelCase or snake_case identifier into lower-case words.
func Words(name string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '$':
			flush()
			continue
		case unicode.IsUpper(r) && i > 0:
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

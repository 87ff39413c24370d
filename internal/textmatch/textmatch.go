// Package textmatch holds the keyword containment primitives shared by the
// matcher and the prompt-context builder.
package textmatch

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize lower-cases text, collapses whitespace runs to single spaces
// and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// ContainsKeyword reports whether normalized text contains keyword.
// A keyword containing a space matches as a plain substring; a single-word
// keyword only matches at word boundaries, so "arm" does not match "harmful".
func ContainsKeyword(text, keyword string) bool {
	k := strings.TrimSpace(strings.ToLower(keyword))
	if k == "" {
		return false
	}
	if strings.Contains(k, " ") {
		return strings.Contains(text, k)
	}
	return containsWord(text, k)
}

// ContainsPadded reports whether keyword appears in text delimited by
// spaces or the string edges.
func ContainsPadded(text, keyword string) bool {
	k := strings.TrimSpace(strings.ToLower(keyword))
	if k == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+k+" ")
}

// ContainsAny reports whether text contains at least one of keywords.
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if ContainsKeyword(text, kw) {
			return true
		}
	}
	return false
}

// containsWord finds k in text where both ends sit on a word boundary.
// A boundary is a position where exactly one side is a word character,
// so keywords that start or end with punctuation behave like a regexp \b.
func containsWord(text, k string) bool {
	first, _ := utf8.DecodeRuneInString(k)
	last, _ := utf8.DecodeLastRuneInString(k)

	for from := 0; from <= len(text)-len(k); {
		i := strings.Index(text[from:], k)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(k)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		leftOK := isWord(first) != (start > 0 && isWord(before))
		rightOK := isWord(last) != (end < len(text) && isWord(after))
		if leftOK && rightOK {
			return true
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return false
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

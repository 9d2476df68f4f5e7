package cli

import (
	"strings"
	"unicode"
)

// containsHebrew reports whether any rune in s is in the Hebrew script.
func containsHebrew(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hebrew, r) {
			return true
		}
	}
	return false
}

// FormatHebrew prepares mixed Hebrew text for terminals that render every
// line left to right. Each word containing Hebrew is reversed rune by rune,
// and when the line contains Hebrew at all the word order flips too. Words
// without Hebrew, numbers and phone digits included, keep their characters
// as they are.
func FormatHebrew(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	hasHebrew := false
	formatted := make([]string, len(words))
	for i, word := range words {
		if containsHebrew(word) {
			hasHebrew = true
			formatted[i] = reverseRunes(word)
		} else {
			formatted[i] = word
		}
	}

	if hasHebrew {
		for i, j := 0, len(formatted)-1; i < j; i, j = i+1, j-1 {
			formatted[i], formatted[j] = formatted[j], formatted[i]
		}
	}

	return strings.Join(formatted, " ")
}

func reverseRunes(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

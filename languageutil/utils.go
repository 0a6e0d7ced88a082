package languageutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers carry state, so each call builds its own.
func titleCaser() cases.Caser { return cases.Title(language.English) }
func lowerCaser() cases.Caser { return cases.Lower(language.English) }

// Tokens splits free text into lower-case words, dropping punctuation.
func Tokens(s string) []string {
	return strings.FieldsFunc(lowerCaser().String(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Title collapses whitespace and title-cases every word.
func Title(s string) string {
	return titleCaser().String(strings.Join(strings.Fields(s), " "))
}

// Truncate cuts s to at most n runes, appending an ellipsis when it cuts.
func Truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

package pdf

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// toTitleCase lowercases the value and capitalizes the start of every word.
// Used for free-text names, addresses and occupations. cases.Caser is not
// safe for concurrent use.
func toTitleCase(s string) string {
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}

// toSentenceCase capitalizes only the first rune. Used for single-choice
// values like gender, religion and relation.
func toSentenceCase(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// collapseLines flattens a multi-line value (addresses come from textareas)
// into a single line for the form grid.
func collapseLines(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

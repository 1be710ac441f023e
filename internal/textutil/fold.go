package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold returns the Unicode case-folded form of s, used for case-insensitive
// comparisons of genres and author names.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// EqualFold compares two strings after trimming and case folding.
func EqualFold(a, b string) bool {
	return Fold(strings.TrimSpace(a)) == Fold(strings.TrimSpace(b))
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// DisplayTitle title-cases s for presentation; keys are never built from it.
func DisplayTitle(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(strings.TrimSpace(s))
}

package textutil

import "strings"

// RemoveWhitespace drops every Unicode whitespace rune from s.
func RemoveWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// SplitList splits a comma-separated list, trimming items and dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Ternary returns a when cond is true, b otherwise.
func Ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

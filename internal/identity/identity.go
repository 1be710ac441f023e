package identity

import (
	"strings"

	"coverkeep/internal/textutil"
)

const leadingArticle = "the "

// delimiters are tried in priority order. The earliest offset in the input
// wins; on a tie the delimiter listed first wins, so "--" beats "-".
var delimiters = []string{"--", "-", "/", `\`, "|"}

// Identity is a parsed title/author pair in display form.
type Identity struct {
	Title  string
	Author string
}

// Key returns the composite key for the identity.
func (id Identity) Key() string {
	return CompositeKey(id.Title, id.Author)
}

// NormalizeTitle trims title and drops a leading "the " (any case). Repeated
// articles are dropped until none remains, so the function is idempotent.
// This differs from stripping once: "The The Hobbit" keys as "Hobbit", not
// "TheHobbit", so a catalog file named TheHobbit_<author> from a one-pass
// normalizer no longer matches that input.
// Punctuation, diacritics and internal whitespace are left untouched.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	for len(title) >= len(leadingArticle) && strings.EqualFold(title[:len(leadingArticle)], leadingArticle) {
		title = strings.TrimSpace(title[len(leadingArticle):])
	}
	return title
}

// CompositeKey joins the whitespace-free normalized title and the
// whitespace-free author with "_". An empty author yields the title-only key.
func CompositeKey(title, author string) string {
	titleKey := textutil.RemoveWhitespace(NormalizeTitle(title))
	authorKey := textutil.RemoveWhitespace(strings.TrimSpace(author))
	if authorKey == "" {
		return titleKey
	}
	return titleKey + "_" + authorKey
}

// ParseTitleAuthor splits free text such as "Dune - Frank Herbert" into a
// title and an author. It is a heuristic: the delimiter occurring first in the
// text splits it once, and text without any delimiter is all title.
func ParseTitleAuthor(raw string) (title, author string) {
	pos := len(raw)
	selected := ""
	for _, delim := range delimiters {
		if i := strings.Index(raw, delim); i != -1 && i < pos {
			pos = i
			selected = delim
		}
	}
	if selected == "" {
		return strings.TrimSpace(raw), ""
	}
	return strings.TrimSpace(raw[:pos]), strings.TrimSpace(raw[pos+len(selected):])
}

// Parse is ParseTitleAuthor returning an Identity.
func Parse(raw string) Identity {
	title, author := ParseTitleAuthor(raw)
	return Identity{Title: title, Author: author}
}

// SearchTitleKey is the lowercased, whitespace-free normalized title used for
// catalog comparisons.
func SearchTitleKey(title string) string {
	return strings.ToLower(textutil.RemoveWhitespace(NormalizeTitle(title)))
}

// SearchAuthorKey is the lowercased author with whitespace and periods removed.
func SearchAuthorKey(author string) string {
	return strings.ToLower(textutil.RemoveWhitespace(strings.ReplaceAll(author, ".", "")))
}

// SplitKey separates a composite key into its title and author segments at the
// first underscore. Keys without an underscore have no author segment.
func SplitKey(key string) (titleKey, authorKey string) {
	titleKey, authorKey, _ = strings.Cut(key, "_")
	return titleKey, authorKey
}

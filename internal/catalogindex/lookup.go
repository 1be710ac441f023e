package catalogindex

import (
	"strconv"
	"strings"

	"coverkeep/internal/identity"
)

// Kind classifies a lookup result.
type Kind int

const (
	NoMatch Kind = iota
	Unique
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	default:
		return "no_match"
	}
}

// Outcome is the result of a catalog lookup. Paths holds one path for Unique
// and every candidate, in name order, for Ambiguous.
type Outcome struct {
	Kind  Kind
	Paths []string
}

// Path returns the single matched path for a Unique outcome.
func (o Outcome) Path() string {
	if o.Kind != Unique || len(o.Paths) == 0 {
		return ""
	}
	return o.Paths[0]
}

func reduce(paths []string) Outcome {
	switch len(paths) {
	case 0:
		return Outcome{Kind: NoMatch}
	case 1:
		return Outcome{Kind: Unique, Paths: paths}
	default:
		return Outcome{Kind: Ambiguous, Paths: paths}
	}
}

// Lookup finds catalog images for a title and optional author.
//
// Books stems are split on "_" into a title key and an author key. When an
// author is supplied and a file carries an author key, both must match and
// the first such file is returned as a unique hit. Title-only matches are
// collected only when no author is supplied or the file has no author key.
// Other categories compare the normalized stem against the normalized title,
// ignoring a "_<n>" suffix added when a name was already taken. Several such
// copies make the lookup ambiguous.
func (idx *Index) Lookup(title, author string) Outcome {
	searchTitle := identity.SearchTitleKey(title)
	if searchTitle == "" {
		return Outcome{Kind: NoMatch}
	}
	if !idx.category.IsBooks() {
		var matches []string
		for _, entry := range idx.entries {
			if identity.SearchTitleKey(collisionBase(entry.Stem)) == searchTitle {
				matches = append(matches, entry.Path)
			}
		}
		return reduce(matches)
	}

	searchAuthor := identity.SearchAuthorKey(author)
	var matches []string
	for _, entry := range idx.entries {
		parts := strings.Split(entry.Stem, "_")
		fileTitle := strings.ToLower(parts[0])
		if searchAuthor != "" && len(parts) >= 2 {
			if fileTitle == searchTitle && identity.SearchAuthorKey(parts[1]) == searchAuthor {
				return Outcome{Kind: Unique, Paths: []string{entry.Path}}
			}
			continue
		}
		if fileTitle == searchTitle {
			matches = append(matches, entry.Path)
		}
	}
	return reduce(matches)
}

// collisionBase strips a trailing "_<n>" (n >= 2) from stem.
func collisionBase(stem string) string {
	i := strings.LastIndex(stem, "_")
	if i <= 0 {
		return stem
	}
	n, err := strconv.Atoi(stem[i+1:])
	if err != nil || n < 2 || strconv.Itoa(n) != stem[i+1:] {
		return stem
	}
	return stem[:i]
}

// LookupKey looks up a Books composite key as produced by identity.CompositeKey.
func (idx *Index) LookupKey(key string) Outcome {
	titleKey, authorKey := identity.SplitKey(key)
	return idx.Lookup(titleKey, authorKey)
}

package catalogindex

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"coverkeep/internal/identity"
)

const (
	defaultSuggestionLimit = 5
	minSuggestionScore     = 0.8
)

// Suggestion is a catalog stem that resembles a missed query.
type Suggestion struct {
	Entry Entry
	Score float32
}

// Suggest ranks catalog entries by Jaro-Winkler similarity between their title
// key and the query title. Only entries scoring at least 0.8 are returned,
// best first, at most limit of them.
func (idx *Index) Suggest(title string, limit int) []Suggestion {
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	query := identity.SearchTitleKey(title)
	if query == "" {
		return nil
	}

	var out []Suggestion
	for _, entry := range idx.entries {
		candidate := identity.SearchTitleKey(entry.Stem)
		if idx.category.IsBooks() {
			candidate = strings.ToLower(strings.SplitN(entry.Stem, "_", 2)[0])
		}
		if candidate == query {
			continue
		}
		score := edlib.JaroWinklerSimilarity(query, candidate)
		if score >= minSuggestionScore {
			out = append(out, Suggestion{Entry: entry, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

package metadata

import (
	"strings"

	"coverkeep/internal/identity"
	"coverkeep/internal/textutil"
)

// Record is the stored metadata for one book. Every field is a string except
// Genres; numeric fields stay free-form and are parsed only when filtering.
type Record struct {
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	PublicationDate string   `json:"publication_date"`
	PageCount       string   `json:"page_count"`
	Genres          []string `json:"genres"`
}

// Key returns the composite key the record must be stored under.
func (r Record) Key() string {
	return identity.CompositeKey(r.Title, r.Author)
}

// Incomplete reports whether author, publication date, page count or genres
// is empty.
func (r Record) Incomplete() bool {
	return strings.TrimSpace(r.Author) == "" ||
		strings.TrimSpace(r.PublicationDate) == "" ||
		strings.TrimSpace(r.PageCount) == "" ||
		len(r.Genres) == 0
}

// HasGenre reports whether genre is in the record, ignoring case.
func (r Record) HasGenre(genre string) bool {
	for _, g := range r.Genres {
		if textutil.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

// normalized trims every field and guarantees a non-nil genre list so the
// persisted document never carries null.
func (r Record) normalized() Record {
	out := Record{
		Title:           strings.TrimSpace(r.Title),
		Author:          strings.TrimSpace(r.Author),
		PublicationDate: strings.TrimSpace(r.PublicationDate),
		PageCount:       strings.TrimSpace(r.PageCount),
		Genres:          make([]string, 0, len(r.Genres)),
	}
	for _, g := range r.Genres {
		if g = strings.TrimSpace(g); g != "" {
			out.Genres = append(out.Genres, g)
		}
	}
	return out
}

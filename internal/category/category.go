package category

import (
	"fmt"
	"strings"
)

// Category is a media category as entered by the user.
type Category string

const (
	Books        Category = "Books"
	Movies       Category = "Movies"
	VideoGames   Category = "Video Games"
	MusicRecords Category = "Music Records"
)

var all = []Category{Books, Movies, VideoGames, MusicRecords}

// folders maps each category to its catalog subdirectory. The mapping is
// fixed; Music Records are catalogued under Albums.
var folders = map[Category]string{
	Books:        "Books",
	Movies:       "Movies",
	VideoGames:   "Video Games",
	MusicRecords: "Albums",
}

var searchSuffixes = map[Category]string{
	Books:        "book cover",
	Movies:       "movie poster",
	VideoGames:   "video game cover",
	MusicRecords: "album cover",
}

// All returns every category in display order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Folder returns the catalog subdirectory name.
func (c Category) Folder() string {
	return folders[c]
}

// SearchSuffix is appended to image search queries for this category.
func (c Category) SearchSuffix() string {
	return searchSuffixes[c]
}

// StagingToken is the category marker embedded in staged filenames.
func (c Category) StagingToken() string {
	return strings.ReplaceAll(string(c), " ", "_")
}

// IsBooks reports whether c is the Books category, which is keyed by title and author.
func (c Category) IsBooks() bool {
	return c == Books
}

func (c Category) String() string {
	return string(c)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := folders[c]
	return ok
}

// Parse resolves a category from its display name, catalog folder or staging
// token, ignoring case.
func Parse(value string) (Category, error) {
	needle := strings.ToLower(strings.TrimSpace(value))
	if needle == "" {
		return "", fmt.Errorf("category is empty")
	}
	for _, c := range all {
		candidates := []string{string(c), c.Folder(), c.StagingToken(), strings.ReplaceAll(string(c), " ", "-")}
		for _, candidate := range candidates {
			if strings.ToLower(candidate) == needle {
				return c, nil
			}
		}
	}
	return "", fmt.Errorf("unknown category %q", value)
}

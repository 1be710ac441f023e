package staging

import (
	"fmt"
	"path/filepath"
	"strings"

	"coverkeep/internal/catalogindex"
	"coverkeep/internal/category"
)

// CatalogCopyMarker tags staged files that were copied out of the catalog.
const CatalogCopyMarker = "_db"

// SelectDirName is the per-gather directory holding Books downloads until
// the user picks which covers to keep.
const SelectDirName = ".select"

// Name is a parsed staging filename.
type Name struct {
	// Identity is the text before the category token: a composite key for
	// Books, the title otherwise.
	Identity string
	Category category.Category
	Ext      string
}

// IsImage reports whether name is a stageable image.
func IsImage(name string) bool {
	return catalogindex.IsImage(name)
}

// IsCatalogCopy reports whether name carries the catalog copy marker.
func IsCatalogCopy(name string) bool {
	return strings.Contains(name, CatalogCopyMarker)
}

// DownloadName names the n-th downloaded image for an identity. Books pass the
// composite key; other categories pass the title.
func DownloadName(cat category.Category, identity string, n int) string {
	return fmt.Sprintf("%s_%s_%d.jpg", identity, cat.StagingToken(), n)
}

// CatalogCopyName names a staged copy of the catalog file at catalogPath.
// Books keep the catalog stem; other categories are named by title and token.
func CatalogCopyName(cat category.Category, identity, catalogPath string) string {
	ext := filepath.Ext(catalogPath)
	if cat.IsBooks() {
		stem := strings.TrimSuffix(filepath.Base(catalogPath), ext)
		return stem + CatalogCopyMarker + ext
	}
	return fmt.Sprintf("%s_%s%s%s", identity, cat.StagingToken(), CatalogCopyMarker, ext)
}

// ParseName finds the category token in a staged filename. Categories are
// tried in display order and the text before the first occurrence of the
// token is the identity. ok is false when no token is present.
func ParseName(name string) (Name, bool) {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	for _, cat := range category.All() {
		token := "_" + cat.StagingToken()
		before, _, found := strings.Cut(base, token)
		if !found {
			continue
		}
		return Name{Identity: before, Category: cat, Ext: ext}, true
	}
	return Name{}, false
}

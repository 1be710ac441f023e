package preflight

import (
	"fmt"
	"log/slog"

	"coverkeep/internal/catalogindex"
	"coverkeep/internal/category"
	"coverkeep/internal/staging"
)

// CategoryCount is the number of catalog images in one category folder.
type CategoryCount struct {
	Category category.Category
	Folder   string
	Images   int
}

// CatalogSummary counts catalog images per category. Missing folders count
// as empty.
func CatalogSummary(root string, logger *slog.Logger) ([]CategoryCount, error) {
	var out []CategoryCount
	for _, cat := range category.All() {
		idx, err := catalogindex.Build(catalogindex.DirLister{}, root, cat, logger)
		if err != nil {
			return nil, fmt.Errorf("index %s: %w", cat, err)
		}
		out = append(out, CategoryCount{Category: cat, Folder: cat.Folder(), Images: idx.Len()})
	}
	return out, nil
}

// StagingSummary reports how many staged images are waiting for promote and
// how many of them are catalog copies.
type StagingSummary struct {
	Pending      int
	CatalogCopy  int
	Unrecognized int
}

// SummarizeStaging inspects the staging directory without changing it.
func SummarizeStaging(dir string) (StagingSummary, error) {
	images, err := staging.List(dir)
	if err != nil {
		return StagingSummary{}, err
	}
	var s StagingSummary
	for _, img := range images {
		if staging.IsCatalogCopy(img.Name) {
			s.CatalogCopy++
			continue
		}
		if _, ok := staging.ParseName(img.Name); ok {
			s.Pending++
		} else {
			s.Unrecognized++
		}
	}
	return s, nil
}

// Detail renders the summary for status output.
func (s StagingSummary) Detail() string {
	return fmt.Sprintf("%d pending, %d catalog copies, %d unrecognized", s.Pending, s.CatalogCopy, s.Unrecognized)
}

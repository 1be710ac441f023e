package catalogindex

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"coverkeep/internal/category"
	"coverkeep/internal/logging"
)

// Lister enumerates the file names in a directory. A missing directory must
// be reported with an error wrapping fs.ErrNotExist.
type Lister interface {
	List(dir string) ([]string, error)
}

// DirLister lists regular files using the operating system.
type DirLister struct{}

// List returns the names of the regular files in dir.
func (DirLister) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Entry is one catalog image.
type Entry struct {
	Name string
	Path string
	Stem string
	Ext  string
}

// Index is a sorted snapshot of one category folder. It is built once per
// operation and never refreshed.
type Index struct {
	category category.Category
	dir      string
	entries  []Entry
}

// IsImage reports whether name has a catalog image extension.
func IsImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	default:
		return false
	}
}

// Build lists the category folder under root. A missing folder yields an
// empty index.
func Build(lister Lister, root string, cat category.Category, logger *slog.Logger) (*Index, error) {
	if lister == nil {
		lister = DirLister{}
	}
	if !cat.Valid() {
		return nil, fmt.Errorf("unknown category %q", cat)
	}
	logger = logging.NewComponentLogger(logger, "catalogindex")
	dir := filepath.Join(root, cat.Folder())

	names, err := lister.List(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("catalog folder missing", logging.String("dir", dir))
			return &Index{category: cat, dir: dir}, nil
		}
		return nil, fmt.Errorf("list catalog folder %s: %w", dir, err)
	}

	sort.Strings(names)
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		if !IsImage(name) {
			continue
		}
		ext := filepath.Ext(name)
		entries = append(entries, Entry{
			Name: name,
			Path: filepath.Join(dir, name),
			Stem: strings.TrimSuffix(name, ext),
			Ext:  ext,
		})
	}
	logger.Debug("catalog index built",
		logging.String(logging.FieldCategory, cat.String()),
		logging.Int("entries", len(entries)))
	return &Index{category: cat, dir: dir, entries: entries}, nil
}

// Category returns the indexed category.
func (idx *Index) Category() category.Category {
	return idx.category
}

// Dir returns the catalog folder the index was built from.
func (idx *Index) Dir() string {
	return idx.dir
}

// Entries returns the indexed images in name order.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Len returns the number of indexed images.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// FindByKeyPrefix returns the first entry whose stem starts with key.
func (idx *Index) FindByKeyPrefix(key string) (Entry, bool) {
	if key == "" {
		return Entry{}, false
	}
	for _, entry := range idx.entries {
		if strings.HasPrefix(entry.Stem, key) {
			return entry, true
		}
	}
	return Entry{}, false
}

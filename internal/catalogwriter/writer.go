package catalogwriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"coverkeep/internal/category"
	"coverkeep/internal/fileutil"
	"coverkeep/internal/identity"
	"coverkeep/internal/logging"
	"coverkeep/internal/services"
	"coverkeep/internal/textutil"
)

// Mode selects whether Place moves or copies the source image.
type Mode int

const (
	Move Mode = iota
	Copy
)

func (m Mode) String() string {
	if m == Copy {
		return "copy"
	}
	return "move"
}

const maxCollisionAttempts = 10000

// CanonicalStem returns the catalog stem for name. Books names are composite
// keys and are kept as-is; other categories use the whitespace-free
// normalized title.
func CanonicalStem(cat category.Category, name string) string {
	if cat.IsBooks() {
		return strings.TrimSpace(name)
	}
	return textutil.RemoveWhitespace(identity.NormalizeTitle(name))
}

// CanonicalFilename returns the catalog file name for name with ext.
func CanonicalFilename(cat category.Category, name, ext string) string {
	return CanonicalStem(cat, name) + normalizeExt(ext)
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return ".jpg"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Writer places images into the category folders under a catalog root.
type Writer struct {
	root   string
	logger *slog.Logger
}

// New constructs a writer for the catalog rooted at root.
func New(root string, logger *slog.Logger) *Writer {
	return &Writer{root: root, logger: logging.NewComponentLogger(logger, "catalogwriter")}
}

// Root returns the catalog root.
func (w *Writer) Root() string {
	return w.root
}

// Place stores src in the category folder as <stem><ext>. An occupied name
// gets a numeric suffix, <stem>_2<ext> and up, so existing entries are never
// overwritten. Lookups ignore the suffix, so the copies resolve as ambiguous
// until the user removes the extras. It returns the written path.
func (w *Writer) Place(ctx context.Context, src string, cat category.Category, stem, ext string, mode Mode) (string, error) {
	logger := logging.WithContext(ctx, w.logger).With(logging.String(logging.FieldCategory, cat.String()))
	if !cat.Valid() {
		return "", services.Wrap(services.ErrValidation, "catalog", "resolve folder", fmt.Sprintf("unknown category %q", cat), nil)
	}
	stem = strings.TrimSpace(stem)
	if stem == "" {
		return "", services.Wrap(services.ErrValidation, "catalog", "validate inputs", "catalog filename is empty", nil)
	}
	ext = normalizeExt(ext)

	dir := filepath.Join(w.root, cat.Folder())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "catalog", "ensure folder", "Failed to create catalog folder", err)
	}
	target, err := nextAvailablePath(dir, stem, ext)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "catalog", "allocate filename", "Unable to allocate catalog filename", err)
	}

	switch mode {
	case Copy:
		err = fileutil.CopyFileVerified(src, target)
	default:
		err = fileutil.MoveFile(src, target)
	}
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "catalog", mode.String()+" image", "Failed to place image into catalog", err)
	}
	logger.Info("catalog image placed",
		logging.String("source", filepath.Base(src)),
		logging.String("target", target),
		logging.String("mode", mode.String()))
	return target, nil
}

func nextAvailablePath(dir, stem, ext string) (string, error) {
	candidate := filepath.Join(dir, stem+ext)
	free, err := pathFree(candidate)
	if err != nil || free {
		return candidate, err
	}
	for attempt := 2; attempt <= maxCollisionAttempts; attempt++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, attempt, ext))
		free, err := pathFree(candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("exhausted filename slots for %s in %s", stem, dir)
}

func pathFree(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

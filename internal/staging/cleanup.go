package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"coverkeep/internal/logging"
)

// CleanResult contains the outcome of a staging cleanup operation.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// RemoveCatalogCopies deletes every staged image carrying the catalog copy
// marker. Those copies exist only so the user can see what the catalog
// already holds.
func RemoveCatalogCopies(ctx context.Context, stagingDir string, logger *slog.Logger) CleanResult {
	result := CleanResult{}
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "staging"))

	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return result
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		}
		return result
	}

	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) || !IsCatalogCopy(entry.Name()) {
			continue
		}
		path := filepath.Join(stagingDir, entry.Name())
		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logging.WarnWithContext(logger, "failed to remove catalog copy",
				"staging_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check staging_dir permissions"),
				logging.String(logging.FieldImpact, "catalog copy stays in staging"))
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Debug("removed catalog copy",
			logging.String("path", path),
			logging.String(logging.FieldEventType, "staging_cleanup"))
	}
	return result
}

// CleanStale removes selection directories older than maxAge that an
// interrupted gather left behind.
func CleanStale(ctx context.Context, stagingDir string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	result := CleanResult{}
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "staging"))

	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return result
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), SelectDirName) {
			continue
		}
		dirPath := filepath.Join(stagingDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale selection directory",
				"staging_cleanup_failed",
				logging.String("path", dirPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check staging_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"))
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		logger.Info("removed stale selection directory",
			logging.String("path", dirPath),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.String(logging.FieldEventType, "staging_cleanup"))
	}
	return result
}

// Image describes one staged image.
type Image struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// List returns the staged images directly inside stagingDir, sorted by name.
// A missing directory is empty.
func List(stagingDir string) ([]Image, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var images []Image
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		images = append(images, Image{
			Name:    entry.Name(),
			Path:    filepath.Join(stagingDir, entry.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	sort.Slice(images, func(i, j int) bool {
		return images[i].Name < images[j].Name
	})
	return images, nil
}

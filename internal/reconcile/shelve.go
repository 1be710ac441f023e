package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"coverkeep/internal/category"
	"coverkeep/internal/fileutil"
	"coverkeep/internal/logging"
	"coverkeep/internal/resolver"
	"coverkeep/internal/services"
)

// Shelver copies catalog images for metadata search results into staging.
type Shelver struct {
	Resolver   *resolver.Resolver
	StagingDir string
	Logger     *slog.Logger
}

// CopyToStaging copies the Books catalog image of each key to
// <staging>/<key><ext>. Keys without an image are reported and skipped.
func (s *Shelver) CopyToStaging(ctx context.Context, session *Session, keys []string) Report {
	ctx = session.Context(ctx, "shelve")
	logger := logging.WithContext(ctx, logging.NewComponentLogger(s.Logger, "shelve"))
	report := Report{SessionID: session.ID}

	idx, err := s.Resolver.Index(category.Books)
	if err != nil {
		report.fail(ItemResult{Name: "catalog"}, err)
		return report
	}
	for _, key := range keys {
		item := ItemResult{Name: key, Key: key, Category: category.Books}
		entry, ok := idx.FindByKeyPrefix(key)
		if !ok {
			report.fail(item, services.Wrap(services.ErrNotFound, "shelve", "find image", fmt.Sprintf("no catalog image for %q", key), nil))
			continue
		}
		dest := filepath.Join(s.StagingDir, key+entry.Ext)
		if err := fileutil.CopyFile(entry.Path, dest); err != nil {
			report.fail(item, services.Wrap(services.ErrTransient, "shelve", "copy image", entry.Path, err))
			continue
		}
		item.Status = StatusCopied
		item.Files = []string{dest}
		report.add(item)
	}
	logger.Info("catalog images copied to staging",
		logging.Int("requested", len(keys)),
		logging.Int("copied", report.Count(StatusCopied)))
	return report
}

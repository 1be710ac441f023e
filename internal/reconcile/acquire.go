package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"coverkeep/internal/category"
	"coverkeep/internal/fileutil"
	"coverkeep/internal/identity"
	"coverkeep/internal/imagesearch"
	"coverkeep/internal/logging"
	"coverkeep/internal/resolver"
	"coverkeep/internal/services"
	"coverkeep/internal/staging"
	"coverkeep/internal/textutil"
)

const (
	defaultResultsPerQuery = 3
	staleSelectionAge      = 24 * time.Hour
)

// ImageSearcher returns image URLs for a search query.
type ImageSearcher interface {
	SearchImages(ctx context.Context, query string, n int) ([]string, error)
}

// Downloader saves the image at url to dest.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// CoverSelector lets the user keep a subset of downloaded Books covers.
type CoverSelector interface {
	SelectCovers(ctx context.Context, paths []string) ([]string, error)
}

// QueryCounter counts outbound searches.
type QueryCounter interface {
	Increment() (int, error)
}

// Request is one title to gather, as typed by the user.
type Request struct {
	Category category.Category
	Raw      string
}

// Acquirer stages cover images for requested titles, copying catalog images
// when they exist and searching the web otherwise.
type Acquirer struct {
	Resolver        *resolver.Resolver
	Searcher        ImageSearcher
	Downloader      Downloader
	Selector        CoverSelector
	Counter         QueryCounter
	StagingDir      string
	ResultsPerQuery int
	Logger          *slog.Logger
}

// Gather processes every request. Item failures are recorded in the report
// and never stop the run.
func (a *Acquirer) Gather(ctx context.Context, session *Session, requests []Request) Report {
	ctx = session.Context(ctx, "gather")
	base := logging.NewComponentLogger(a.Logger, "gather")
	logger := logging.WithContext(ctx, base)
	report := Report{SessionID: session.ID}

	if err := os.MkdirAll(a.StagingDir, 0o755); err != nil {
		report.fail(ItemResult{Name: a.StagingDir}, services.Wrap(services.ErrConfiguration, "gather", "ensure staging", a.StagingDir, err))
		return report
	}
	staging.CleanStale(ctx, a.StagingDir, staleSelectionAge, a.Logger)

	selectDir := filepath.Join(a.StagingDir, staging.SelectDirName+"-"+session.ID)
	defer func() {
		if err := os.RemoveAll(selectDir); err != nil {
			logging.WarnWithContext(logger, "failed to remove selection directory",
				"selection_cleanup_failed",
				logging.String("path", selectDir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "directory removed by the next gather after 24h"))
		}
	}()

	var pending []string
	for _, req := range requests {
		if err := ctx.Err(); err != nil {
			report.fail(ItemResult{Name: req.Raw, Category: req.Category}, err)
			continue
		}
		itemCtx := services.WithRequestID(ctx, req.Raw)
		item, downloads := a.gatherOne(itemCtx, logging.WithContext(itemCtx, base), session, req, selectDir, &report)
		pending = append(pending, downloads...)
		report.add(item)
	}

	if len(pending) > 0 {
		a.keepSelected(ctx, logger, pending, &report)
	}
	logger.Info("gather completed",
		logging.Int("requests", len(requests)),
		logging.Int("catalog_hits", report.Count(StatusCatalogHit)),
		logging.Int("downloaded", report.Count(StatusDownloaded)),
		logging.Int("queries", report.Queries),
		logging.Int("errors", len(report.Errors())))
	return report
}

func (a *Acquirer) gatherOne(ctx context.Context, logger *slog.Logger, session *Session, req Request, selectDir string, report *Report) (ItemResult, []string) {
	item := ItemResult{Name: req.Raw, Category: req.Category}
	logger = logger.With(logging.String(logging.FieldCategory, req.Category.String()))

	id := identity.Parse(req.Raw)
	if id.Title == "" {
		return withErr(item, services.Wrap(services.ErrValidation, "gather", "parse input", "title is empty", nil)), nil
	}
	if !req.Category.Valid() {
		return withErr(item, services.Wrap(services.ErrValidation, "gather", "parse input", fmt.Sprintf("unknown category %q", req.Category), nil)), nil
	}

	stem := textutil.RemoveWhitespace(identity.NormalizeTitle(id.Title))
	lookupAuthor := ""
	if req.Category.IsBooks() {
		stem = id.Key()
		lookupAuthor = id.Author
		session.Remember(stem, id)
	}
	item.Key = stem

	res, err := a.Resolver.Resolve(ctx, req.Category, id.Title, lookupAuthor)
	if err != nil {
		return withErr(item, err), nil
	}
	if res.Found() {
		dest := filepath.Join(a.StagingDir, staging.CatalogCopyName(req.Category, stem, res.Path))
		if err := fileutil.CopyFile(res.Path, dest); err != nil {
			return withErr(item, services.Wrap(services.ErrTransient, "gather", "copy catalog image", res.Path, err)), nil
		}
		item.Status = StatusCatalogHit
		item.Files = []string{dest}
		logger.Info("catalog image staged", logging.String("title", id.Title), logging.String("path", dest))
		return item, nil
	}

	if a.Searcher == nil || a.Downloader == nil {
		return withErr(item, services.Wrap(services.ErrConfiguration, "gather", "search", "image search is not configured", nil)), nil
	}
	if a.Counter != nil {
		count, err := a.Counter.Increment()
		if err != nil {
			logging.WarnWithContext(logger, "failed to persist daily query count",
				"quota_save_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "daily count may undercount"))
		}
		report.QueryCount = count
	}
	report.Queries++

	query := imagesearch.Query(id.Title, id.Author, req.Category.SearchSuffix())
	urls, err := a.Searcher.SearchImages(ctx, query, a.resultsPerQuery())
	if err != nil {
		return withErr(item, err), nil
	}
	if len(urls) == 0 {
		item.Status = StatusNoResults
		logger.Info("no images found", logging.String("query", query))
		return item, nil
	}

	dir := a.StagingDir
	if req.Category.IsBooks() {
		dir = selectDir
	}
	var saved []string
	var errs []error
	for i, url := range urls {
		dest := filepath.Join(dir, staging.DownloadName(req.Category, stem, i+1))
		if err := a.Downloader.Download(ctx, url, dest); err != nil {
			errs = append(errs, err)
			logging.WarnWithContext(logger, "image download failed",
				"image_download_failed",
				logging.String("url", url),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "the source may block downloads; try another result"))
			continue
		}
		saved = append(saved, dest)
	}
	if len(saved) == 0 {
		return withErr(item, errors.Join(errs...)), nil
	}
	item.Status = StatusDownloaded
	item.Files = saved
	logger.Info("images downloaded", logging.String("query", query), logging.Int("count", len(saved)))
	if req.Category.IsBooks() {
		return item, saved
	}
	return item, nil
}

// keepSelected asks the selector which Books downloads to keep and copies
// them into staging. Without a selector every download is kept.
func (a *Acquirer) keepSelected(ctx context.Context, logger *slog.Logger, pending []string, report *Report) {
	keep := pending
	if a.Selector != nil {
		chosen, err := a.Selector.SelectCovers(ctx, pending)
		if err != nil {
			report.fail(ItemResult{Name: "cover selection", Category: category.Books}, fmt.Errorf("select covers: %w", err))
			return
		}
		keep = chosen
	}
	for _, path := range keep {
		dest := filepath.Join(a.StagingDir, filepath.Base(path))
		if err := fileutil.CopyFile(path, dest); err != nil {
			report.fail(ItemResult{Name: filepath.Base(path), Category: category.Books},
				services.Wrap(services.ErrTransient, "gather", "copy selected cover", path, err))
			continue
		}
		relocate(report, path, dest)
	}
	for _, path := range pending {
		if !slices.Contains(keep, path) {
			relocate(report, path, "")
		}
	}
	logger.Info("book covers selected", logging.Int("offered", len(pending)), logging.Int("kept", len(keep)))
}

// relocate rewrites a file reference in the report; an empty dest drops it.
func relocate(report *Report, from, dest string) {
	for i := range report.Items {
		var files []string
		for _, f := range report.Items[i].Files {
			switch {
			case f != from:
				files = append(files, f)
			case dest != "":
				files = append(files, dest)
			}
		}
		report.Items[i].Files = files
	}
}

func (a *Acquirer) resultsPerQuery() int {
	if a.ResultsPerQuery <= 0 {
		return defaultResultsPerQuery
	}
	return a.ResultsPerQuery
}

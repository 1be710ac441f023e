package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"coverkeep/internal/catalogwriter"
	"coverkeep/internal/category"
	"coverkeep/internal/fileutil"
	"coverkeep/internal/logging"
	"coverkeep/internal/metadata"
	"coverkeep/internal/resolver"
	"coverkeep/internal/services"
	"coverkeep/internal/staging"
)

// Decision is the user's answer to a metadata prompt.
type Decision int

const (
	Accept Decision = iota
	SkipAll
	Decline
)

// PromptRequest describes a staged Books image that needs metadata.
type PromptRequest struct {
	Key        string
	StagedPath string
	Prefill    metadata.Record
	// Genres lists every genre already in the store, for quick selection.
	Genres []string
}

// MetadataPrompter asks the user for a book's metadata.
type MetadataPrompter interface {
	PromptMetadata(ctx context.Context, req PromptRequest) (metadata.Record, Decision, error)
}

// Suggester proposes metadata for a title and author.
type Suggester interface {
	Suggest(ctx context.Context, title, author string) (metadata.Record, bool, error)
}

// Promoter moves staged images into the catalog, collecting metadata for new
// books along the way.
type Promoter struct {
	Resolver   *resolver.Resolver
	Writer     *catalogwriter.Writer
	Store      *metadata.Store
	Prompter   MetadataPrompter
	Suggester  Suggester
	StagingDir string
	Logger     *slog.Logger
}

// Promote walks the staging directory in name order. Catalog copies are
// deleted; Books images either match the catalog or go through the metadata
// prompt; other categories move straight into their folder. Files without a
// category token stay in staging.
func (p *Promoter) Promote(ctx context.Context, session *Session) Report {
	ctx = session.Context(ctx, "promote")
	base := logging.NewComponentLogger(p.Logger, "promote")
	logger := logging.WithContext(ctx, base)
	report := Report{SessionID: session.ID}

	cleaned := staging.RemoveCatalogCopies(ctx, p.StagingDir, p.Logger)
	for _, path := range cleaned.Removed {
		report.add(ItemResult{Name: filepath.Base(path), Status: StatusRemoved})
	}
	for _, e := range cleaned.Errors {
		report.fail(ItemResult{Name: filepath.Base(e.Path)}, e.Error)
	}

	images, err := staging.List(p.StagingDir)
	if err != nil {
		report.fail(ItemResult{Name: p.StagingDir}, services.Wrap(services.ErrConfiguration, "promote", "list staging", p.StagingDir, err))
		return report
	}

	accepted := make(map[string]metadata.Record)
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			report.fail(ItemResult{Name: img.Name}, err)
			continue
		}
		if staging.IsCatalogCopy(img.Name) {
			continue
		}
		name, ok := staging.ParseName(img.Name)
		if !ok {
			report.add(ItemResult{Name: img.Name, Status: StatusUnmatched})
			logger.Debug("staged image has no category token", logging.String("file", img.Name))
			continue
		}
		itemCtx := services.WithRequestID(ctx, img.Name)
		itemLogger := logging.WithContext(itemCtx, base)
		var item ItemResult
		if name.Category.IsBooks() {
			item = p.promoteBook(itemCtx, itemLogger, session, img, name, accepted)
		} else {
			item = p.promoteOther(itemCtx, img, name)
		}
		if item.Err != nil {
			logging.WarnWithContext(itemLogger, "staged image not promoted",
				"promote_item_failed",
				logging.String("file", img.Name),
				logging.String(logging.FieldCategory, name.Category.String()),
				logging.Error(item.Err),
				logging.String(logging.FieldImpact, "image stays in staging"))
		}
		report.add(item)
	}

	logger.Info("promotion completed",
		logging.Int("promoted", report.Count(StatusPromoted)),
		logging.Int("catalog_hits", report.Count(StatusCatalogHit)),
		logging.Int("declined", report.Count(StatusDeclined)),
		logging.Int("unmatched", report.Count(StatusUnmatched)),
		logging.Int("errors", len(report.Errors())))
	return report
}

func (p *Promoter) promoteOther(ctx context.Context, img staging.Image, name staging.Name) ItemResult {
	item := ItemResult{Name: img.Name, Category: name.Category}
	stem := catalogwriter.CanonicalStem(name.Category, name.Identity)
	item.Key = stem
	if stem == "" {
		return withErr(item, services.Wrap(services.ErrValidation, "promote", "parse name", "staged file has no title", nil))
	}
	target, err := p.Writer.Place(ctx, img.Path, name.Category, stem, name.Ext, catalogwriter.Move)
	if err != nil {
		return withErr(item, err)
	}
	item.Status = StatusPromoted
	item.Files = []string{target}
	return item
}

func (p *Promoter) promoteBook(ctx context.Context, logger *slog.Logger, session *Session, img staging.Image, name staging.Name, accepted map[string]metadata.Record) ItemResult {
	key := strings.TrimSpace(name.Identity)
	item := ItemResult{Name: img.Name, Category: category.Books, Key: key}
	if key == "" {
		return withErr(item, services.Wrap(services.ErrValidation, "promote", "parse name", "staged file has no key", nil))
	}

	if rec, ok := accepted[key]; ok {
		return p.placeBook(ctx, item, img, name, rec, false)
	}

	res, err := p.Resolver.ResolveKey(ctx, key)
	if err != nil {
		return withErr(item, err)
	}
	if res.Found() {
		echo := filepath.Join(p.StagingDir, staging.CatalogCopyName(category.Books, key, res.Path))
		if err := fileutil.CopyFile(res.Path, echo); err != nil {
			return withErr(item, services.Wrap(services.ErrTransient, "promote", "copy catalog image", res.Path, err))
		}
		if err := os.Remove(img.Path); err != nil {
			return withErr(item, services.Wrap(services.ErrTransient, "promote", "remove staged image", img.Path, err))
		}
		item.Status = StatusCatalogHit
		item.Files = []string{echo}
		logger.Info("book already catalogued", logging.String("key", key), logging.String("catalog_path", res.Path))
		return item
	}

	rec, decision, err := p.collectMetadata(ctx, logger, session, key, img.Path)
	if err != nil {
		return withErr(item, err)
	}
	if decision == Decline {
		item.Status = StatusDeclined
		logger.Info("metadata prompt declined", logging.String("key", key))
		return item
	}
	if strings.TrimSpace(rec.Title) == "" {
		return withErr(item, services.Wrap(services.ErrValidation, "promote", "validate metadata",
			"title is required to name the catalog file", nil))
	}
	if strings.TrimSpace(rec.Author) == "" {
		return withErr(item, services.Wrap(services.ErrValidation, "promote", "validate metadata",
			"author is required to name the catalog file", nil))
	}
	if decision == SkipAll {
		session.SkipAllMetadata = true
		rec = metadata.Record{Title: rec.Title, Author: rec.Author, Genres: []string{}}
	}

	result := p.placeBook(ctx, item, img, name, rec, true)
	if result.Err == nil {
		accepted[key] = rec
		session.Forget(key)
	}
	return result
}

// collectMetadata builds the prefill for key and runs the prompt unless the
// session is skipping prompts.
func (p *Promoter) collectMetadata(ctx context.Context, logger *slog.Logger, session *Session, key, stagedPath string) (metadata.Record, Decision, error) {
	prefill := p.prefill(ctx, logger, session, key)
	if session.SkipAllMetadata {
		return metadata.Record{Title: prefill.Title, Author: prefill.Author, Genres: []string{}}, Accept, nil
	}
	if p.Prompter == nil {
		return metadata.Record{}, Decline, services.Wrap(services.ErrConfiguration, "promote", "prompt", "no metadata prompter configured", nil)
	}
	rec, decision, err := p.Prompter.PromptMetadata(ctx, PromptRequest{
		Key:        key,
		StagedPath: stagedPath,
		Prefill:    prefill,
		Genres:     p.Store.Genres(),
	})
	if err != nil {
		return metadata.Record{}, Decline, fmt.Errorf("metadata prompt: %w", err)
	}
	return rec, decision, nil
}

func (p *Promoter) prefill(ctx context.Context, logger *slog.Logger, session *Session, key string) metadata.Record {
	if rec, ok := p.Store.Get(key); ok {
		return rec
	}
	id := session.Prefill(key)
	rec := metadata.Record{Title: id.Title, Author: id.Author, Genres: []string{}}
	if p.Suggester == nil || session.SkipAllMetadata {
		return rec
	}
	suggested, ok, err := p.Suggester.Suggest(ctx, id.Title, id.Author)
	if err != nil {
		logging.WarnWithContext(logger, "metadata suggestion failed",
			"bookinfo_failed",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access or disable [bookinfo]"),
			logging.String(logging.FieldImpact, "prompt starts without suggestions"))
		return rec
	}
	if !ok {
		return rec
	}
	if rec.Author == "" {
		rec.Author = suggested.Author
	}
	rec.PublicationDate = suggested.PublicationDate
	rec.PageCount = suggested.PageCount
	rec.Genres = suggested.Genres
	return rec
}

// placeBook moves the staged image to Books/<key><ext> and, when save is
// set, stores the record. The image is placed first so a failed move leaves
// no metadata behind; a failed store write moves the image back to staging.
func (p *Promoter) placeBook(ctx context.Context, item ItemResult, img staging.Image, name staging.Name, rec metadata.Record, save bool) ItemResult {
	newKey := rec.Key()
	item.Key = newKey
	target, err := p.Writer.Place(ctx, img.Path, category.Books, newKey, name.Ext, catalogwriter.Move)
	if err != nil {
		return withErr(item, err)
	}
	if save {
		previous, existed := p.Store.Get(newKey)
		if err := p.Store.Put(newKey, rec); err != nil {
			return withErr(item, p.unplace(ctx, target, img.Path, err))
		}
		if err := p.Store.Save(); err != nil {
			if existed {
				_ = p.Store.Put(newKey, previous)
			} else {
				p.Store.Delete(newKey)
			}
			saveErr := services.Wrap(services.ErrTransient, "promote", "save metadata", newKey, err)
			return withErr(item, p.unplace(ctx, target, img.Path, saveErr))
		}
	}
	item.Files = []string{target}
	item.Status = StatusPromoted
	return item
}

// unplace returns a placed image to staging after its record was rejected.
// It returns cause, annotated when the image could not be moved back.
func (p *Promoter) unplace(ctx context.Context, target, stagedPath string, cause error) error {
	if err := fileutil.MoveFile(target, stagedPath); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, logging.NewComponentLogger(p.Logger, "promote")),
			"failed to return image to staging",
			"promote_rollback_failed",
			logging.String("path", target),
			logging.Error(err),
			logging.String(logging.FieldImpact, "image stays in the catalog without a metadata record"),
			logging.String(logging.FieldErrorHint, "move the file back to staging by hand"))
		return fmt.Errorf("%w (image left at %s: %v)", cause, target, err)
	}
	return cause
}

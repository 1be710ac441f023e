package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"coverkeep/internal/catalogindex"
	"coverkeep/internal/category"
	"coverkeep/internal/logging"
	"coverkeep/internal/services"
)

// Chooser picks one of several candidate catalog paths. Returning ok=false
// declines the choice.
type Chooser interface {
	Choose(ctx context.Context, title string, candidates []string) (path string, ok bool, err error)
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func(ctx context.Context, title string, candidates []string) (string, bool, error)

// Choose calls f.
func (f ChooserFunc) Choose(ctx context.Context, title string, candidates []string) (string, bool, error) {
	return f(ctx, title, candidates)
}

// FirstChooser always picks the first candidate.
var FirstChooser = ChooserFunc(func(_ context.Context, _ string, candidates []string) (string, bool, error) {
	if len(candidates) == 0 {
		return "", false, nil
	}
	return candidates[0], true, nil
})

// Resolution is the final answer for one query.
type Resolution struct {
	Outcome  catalogindex.Outcome
	Path     string
	Declined bool
}

// Found reports whether the resolution selected a catalog image.
func (r Resolution) Found() bool {
	return r.Path != ""
}

// Resolver answers lookups against the catalog, building each category index
// at most once over its lifetime. Create one per operation.
type Resolver struct {
	root    string
	lister  catalogindex.Lister
	chooser Chooser
	logger  *slog.Logger
	indexes map[category.Category]*catalogindex.Index
}

// New constructs a resolver over the catalog rooted at root.
func New(root string, lister catalogindex.Lister, chooser Chooser, logger *slog.Logger) *Resolver {
	if lister == nil {
		lister = catalogindex.DirLister{}
	}
	if chooser == nil {
		chooser = FirstChooser
	}
	return &Resolver{
		root:    root,
		lister:  lister,
		chooser: chooser,
		logger:  logging.NewComponentLogger(logger, "resolver"),
		indexes: make(map[category.Category]*catalogindex.Index),
	}
}

// Index returns the category index, building it on first use.
func (r *Resolver) Index(cat category.Category) (*catalogindex.Index, error) {
	if idx, ok := r.indexes[cat]; ok {
		return idx, nil
	}
	idx, err := catalogindex.Build(r.lister, r.root, cat, r.logger)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "resolve", "build index", cat.String(), err)
	}
	r.indexes[cat] = idx
	return idx, nil
}

// Resolve looks up title and author in the category and asks the chooser to
// settle ambiguous results.
func (r *Resolver) Resolve(ctx context.Context, cat category.Category, title, author string) (Resolution, error) {
	idx, err := r.Index(cat)
	if err != nil {
		return Resolution{}, err
	}
	return r.settle(ctx, title, idx.Lookup(title, author))
}

// ResolveKey resolves a Books composite key.
func (r *Resolver) ResolveKey(ctx context.Context, key string) (Resolution, error) {
	idx, err := r.Index(category.Books)
	if err != nil {
		return Resolution{}, err
	}
	return r.settle(ctx, key, idx.LookupKey(key))
}

func (r *Resolver) settle(ctx context.Context, title string, outcome catalogindex.Outcome) (Resolution, error) {
	logger := logging.WithContext(ctx, r.logger)
	res := Resolution{Outcome: outcome}
	switch outcome.Kind {
	case catalogindex.NoMatch:
		logger.Debug("catalog miss", logging.String("title", title))
		return res, nil
	case catalogindex.Unique:
		res.Path = outcome.Path()
		logger.Debug("catalog hit", logging.String("title", title), logging.String("path", res.Path))
		return res, nil
	}

	path, ok, err := r.chooser.Choose(ctx, title, slices.Clone(outcome.Paths))
	if err != nil {
		return res, fmt.Errorf("choose catalog image for %q: %w", title, err)
	}
	if !ok {
		res.Declined = true
		logger.Info("ambiguous catalog match declined",
			logging.String("title", title),
			logging.Int("candidates", len(outcome.Paths)))
		return res, nil
	}
	if !slices.Contains(outcome.Paths, path) {
		return res, services.Wrap(services.ErrValidation, "resolve", "choose", fmt.Sprintf("chooser returned unknown path %q", path), nil)
	}
	res.Path = path
	logger.Info("ambiguous catalog match resolved",
		logging.String("title", title),
		logging.String("path", path),
		logging.Int("candidates", len(outcome.Paths)))
	return res, nil
}

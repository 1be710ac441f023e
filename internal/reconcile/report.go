package reconcile

import (
	"coverkeep/internal/category"
	"coverkeep/internal/services"
)

// Status is the per-item result of a reconciliation step.
type Status string

const (
	StatusCatalogHit Status = "catalog_hit"
	StatusDownloaded Status = "downloaded"
	StatusNoResults  Status = "no_results"
	StatusPromoted   Status = "promoted"
	StatusRemoved    Status = "removed"
	StatusDeclined   Status = "declined"
	StatusUnmatched  Status = "unmatched"
	StatusCopied     Status = "copied"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// ItemResult describes what happened to one request, staged file or key.
type ItemResult struct {
	Name     string
	Category category.Category
	Key      string
	Status   Status
	Files    []string
	Err      error
}

// Report collects the per-item results of a run.
type Report struct {
	SessionID string
	Items     []ItemResult
	// Queries is the number of searches this run made; QueryCount is the
	// daily total after the last one.
	Queries    int
	QueryCount int
}

func (r *Report) add(item ItemResult) {
	r.Items = append(r.Items, item)
}

// fail records err against item.
func (r *Report) fail(item ItemResult, err error) {
	r.add(withErr(item, err))
}

// withErr marks item skipped or failed according to the class of err.
func withErr(item ItemResult, err error) ItemResult {
	item.Err = err
	if services.Classify(err) == services.OutcomeSkipped {
		item.Status = StatusSkipped
	} else {
		item.Status = StatusFailed
	}
	return item
}

// Errors returns the items that did not complete.
func (r Report) Errors() []ItemResult {
	var out []ItemResult
	for _, item := range r.Items {
		if item.Err != nil {
			out = append(out, item)
		}
	}
	return out
}

// Count returns the number of items with status.
func (r Report) Count(status Status) int {
	n := 0
	for _, item := range r.Items {
		if item.Status == status {
			n++
		}
	}
	return n
}

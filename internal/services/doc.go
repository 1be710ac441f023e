// Package services defines the error taxonomy and context helpers shared by
// the reconciliation engine and its collaborators.
//
// Error markers let batch operations (gather, promote, import) decide whether
// a failed item counts as skipped or failed without string matching. Context
// helpers stamp session, stage and correlation identifiers for logging.
package services

// Package reconcile drives the two halves of a cover session: gathering
// images into staging and promoting staged images into the catalog.
//
// Gather parses each typed title, stages the catalog image on a hit and
// otherwise searches and downloads candidates. Promote routes each staged
// file by its category token. Books images already in the catalog are not
// written again; new books need metadata with an author before their image
// is placed. Each item fails on its own, and the run's Report lists what
// happened to every item.
//
// All cross-item state lives in a Session: the typed inputs used to prefill
// prompts and the sticky "skip all metadata" choice.
package reconcile

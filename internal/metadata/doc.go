// Package metadata stores book metadata records keyed by composite identity
// key in a single JSON document.
//
// The document is loaded and saved as one unit. Record order is the order
// keys were first inserted and survives a save/load round trip, so listings
// and exports are reproducible. Load failures are soft: the store starts
// empty and logs a warning. Search evaluates conjunctive filters over author,
// genres, page count and publication year.
package metadata

// Package catalogindex reads a category folder of the image catalog into a
// sorted, immutable index and answers title/author lookups against it.
//
// Lookups report no match, a unique match or an ambiguous candidate set;
// callers decide how ambiguity is resolved. Sorting the entries by name
// makes every lookup deterministic regardless of directory order.
package catalogindex

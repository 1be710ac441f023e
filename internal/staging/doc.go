// Package staging manages the gathered-images directory: filename
// conventions for downloads and catalog copies, listing, and cleanup.
//
// Downloads are named <identity>_<Category_Token>_<n>.jpg and catalog copies
// carry a _db marker. Promotion relies on these names to route each image to
// its catalog folder.
package staging

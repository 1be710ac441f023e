// Package catalogwriter stores accepted cover images in the catalog under
// their canonical filename.
//
// Books are named by composite key; other categories by whitespace-free
// normalized title. Existing catalog files are never overwritten: a taken
// name receives a numeric suffix that keeps the title and author segments
// of Books names readable by later lookups.
package catalogwriter

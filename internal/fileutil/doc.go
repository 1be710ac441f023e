// Package fileutil holds the copy, move, atomic write and advisory locking
// helpers shared by the catalog writer, the stores and the CLI.
package fileutil

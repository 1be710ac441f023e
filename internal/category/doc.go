// Package category defines the fixed set of media categories together with
// their catalog folders, search suffixes and staging filename tokens.
package category

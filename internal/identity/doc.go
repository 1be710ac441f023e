// Package identity turns free-text titles and authors into the stable keys
// used to name catalog files and index book metadata.
//
// Every function is pure: malformed or empty input produces an empty or
// title-only result rather than an error.
package identity

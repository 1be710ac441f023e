// Package textutil provides the small string helpers shared by identity
// normalization, metadata filtering and tabular import.
package textutil

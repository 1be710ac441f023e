// Package config loads, normalizes, and validates coverkeep configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks for the image search and book
// lookup credentials. Derived locations for the metadata document, the daily
// query counter and the process lock live here so every command agrees on
// them.
package config

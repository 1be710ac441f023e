// Package preflight provides readiness checks for the directories and
// external services that coverkeep depends on.
//
// The gather and promote commands call RunAll before touching any file and
// stop when a required check fails. The status command shows every result
// alongside the catalog summary.
package preflight

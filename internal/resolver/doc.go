// Package resolver turns catalog lookups into a single decision, delegating
// ambiguous results to an injected Chooser.
package resolver

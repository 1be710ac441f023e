// Package tui implements the interactive terminal prompts: the catalog
// candidate picker, the Books cover selector and the metadata form.
//
// Each prompt runs its own Bubble Tea program and returns when the user
// submits or cancels. Terminal satisfies the prompt interfaces consumed by
// the resolver and reconcile packages.
package tui

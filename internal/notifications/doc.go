// Package notifications publishes run summaries to ntfy.
//
// Commands call Publish with an Event and a Payload once a gather or promote
// run finishes. When no topic is configured NewService returns a notifier that
// does nothing, so callers never check whether notifications are enabled.
package notifications

// Package notifications delivers episode and batch outcomes via ntfy.
//
// The ntfy implementation posts plain-text messages to the topic configured
// under [notifications] and degrades to a no-op when no topic is set.
// Delivery failures are returned to the caller, which logs them; they never
// change the outcome of an episode.
package notifications

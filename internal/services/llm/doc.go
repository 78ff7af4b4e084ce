// Package llm provides an OpenAI-compatible chat completion client used to
// turn stories into narration scripts.
//
// Client.Complete sends a system prompt and user message and returns the
// first non-empty assistant message. Non-2xx responses surface as
// *StatusError, which carries the status code and body and matches
// services.ErrUpstream. Requests are never retried.
package llm

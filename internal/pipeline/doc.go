// Package pipeline runs the script, audio and video stages for one episode
// and loops them over a contiguous range of episodes.
//
// Stages run strictly in order and stop at the first failure. A failure is
// logged with the episode number, recorded in run history and returned as a
// failed Result; it never aborts a batch. Batches process episodes one at a
// time and stop early only when the context is cancelled.
//
// Each episode run carries a fresh run id plus episode and stage context
// fields so every log line from the stages can be correlated.
package pipeline

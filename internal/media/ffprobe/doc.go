// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Prober.Inspect runs ffprobe and decodes streams and format metadata;
// Prober.Duration is the shortcut used when measuring narration, music and
// background clips. Helper methods on Result expose stream counts, the first
// audio sample rate and the first video frame size.
package ffprobe

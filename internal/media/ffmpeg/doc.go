// Package ffmpeg builds and runs ffmpeg invocations.
//
// Command collects inputs with their per-input options, filter_complex
// chains, stream maps and encoder options; Exec runs the result and folds
// the tool's output into the returned error.
package ffmpeg

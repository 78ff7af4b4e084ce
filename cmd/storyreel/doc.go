// Package main hosts the storyreel CLI entrypoint and command graph.
//
// The Cobra command tree runs single episodes or contiguous batches through
// the script, audio and video stages, inspects run history and episode
// outputs, checks external dependencies, and scaffolds configuration.
// Configuration resolution and logger construction live in commandContext so
// subcommands only deal with flags and output.
//
// Keep this package lean: new behaviour belongs in the internal packages
// first and is surfaced here through a command or flag.
package main

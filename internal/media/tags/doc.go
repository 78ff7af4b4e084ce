// Package tags reads descriptive metadata embedded in background music files.
package tags

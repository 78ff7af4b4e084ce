// Package scriptgen implements the script stage: it selects the episode's
// story from the catalogue and asks the language model to turn it into a
// narration script written to script.txt.
package scriptgen

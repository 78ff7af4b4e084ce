package logging

import "strings"

// FormatSubject builds the episode/stage subject string used in console output.
func FormatSubject(episode, stage string) string {
	episode = strings.TrimSpace(episode)
	stage = strings.TrimSpace(stage)
	switch {
	case episode != "" && stage != "":
		return "Episode " + episode + " (" + stage + ")"
	case episode != "":
		return "Episode " + episode
	default:
		return stage
	}
}

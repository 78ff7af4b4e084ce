// Package narration implements the audio stage: it reads an episode's
// script.txt and synthesizes audio.mp3 through the text-to-speech service.
// The audio is streamed to a temporary sibling file and renamed into place,
// so an interrupted request never leaves a truncated audio.mp3 behind.
package narration

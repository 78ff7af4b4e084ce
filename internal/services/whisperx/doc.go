// Package whisperx drives WhisperX (through uvx) to produce word-timed
// transcripts of rendered episodes.
//
// ExtractAudio pulls a mono 16 kHz WAV out of a video with ffmpeg, Transcribe
// runs WhisperX with the configured model size and device, and LoadSegments
// decodes the JSON output into segments and words. Commands go through an
// injectable runner so tests never execute ffmpeg or Python.
package whisperx

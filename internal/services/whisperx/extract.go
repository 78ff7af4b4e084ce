package whisperx

// buildExtractArgs produces ffmpeg arguments that pull the first audio stream
// of source into a mono 16 kHz PCM WAV file.
func buildExtractArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", ExtractSampleRate,
		"-c:a", "pcm_s16le",
		dest,
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeVideo(); err != nil {
		return err
	}
	c.normalizeSubtitles()
	c.normalizeTranscription()
	c.normalizeLLM()
	c.normalizeSpeech()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key   string
		value *string
		def   string
	}{
		{"paths.episodes_dir", &c.Paths.EpisodesDir, defaultEpisodesDir},
		{"paths.bg_music_dir", &c.Paths.MusicDir, defaultMusicDir},
		{"paths.bg_videos_dir", &c.Paths.VideosDir, defaultVideosDir},
		{"paths.stories_file", &c.Paths.StoriesFile, defaultStoriesFile},
		{"paths.prompt_file", &c.Paths.PromptFile, defaultPromptFile},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.def
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}

	// Empty log_dir and temp_dir are meaningful: stdout-only logging and the
	// system temp directory respectively.
	var err error
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.TempDir, err = expandPath(strings.TrimSpace(c.Paths.TempDir)); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeVideo() error {
	if err := envInt("VIDEO_FPS", &c.Video.FPS); err != nil {
		return err
	}
	if err := envInt("VIDEO_WIDTH", &c.Video.Width); err != nil {
		return err
	}
	if err := envInt("VIDEO_HEIGHT", &c.Video.Height); err != nil {
		return err
	}
	if err := envFloat("BG_MUSIC_VOLUME", &c.Video.MusicVolume); err != nil {
		return err
	}
	if err := envFloat("AUDIO_SPEED_FACTOR", &c.Video.SpeedFactor); err != nil {
		return err
	}
	if c.Video.SpeedFactor == 0 {
		c.Video.SpeedFactor = defaultSpeedFactor
	}
	if c.Video.MaxReelSegments <= 0 {
		c.Video.MaxReelSegments = defaultMaxReelSegments
	}
	c.Video.VideoCodec = strings.TrimSpace(c.Video.VideoCodec)
	if c.Video.VideoCodec == "" {
		c.Video.VideoCodec = defaultVideoCodec
	}
	c.Video.AudioCodec = strings.TrimSpace(c.Video.AudioCodec)
	if c.Video.AudioCodec == "" {
		c.Video.AudioCodec = defaultAudioCodec
	}
	c.Video.Preset = strings.TrimSpace(c.Video.Preset)
	return nil
}

func (c *Config) normalizeSubtitles() {
	c.Subtitles.Color = strings.TrimSpace(c.Subtitles.Color)
	if c.Subtitles.Color == "" {
		c.Subtitles.Color = defaultSubtitleColor
	}
	c.Subtitles.OutlineColor = strings.TrimSpace(c.Subtitles.OutlineColor)
	if c.Subtitles.OutlineColor == "" {
		c.Subtitles.OutlineColor = defaultSubtitleOutline
	}
	c.Subtitles.Font = strings.TrimSpace(c.Subtitles.Font)
	if c.Subtitles.Font == "" {
		c.Subtitles.Font = defaultSubtitleFont
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultWhisperModel
	}
	c.Transcription.Device = strings.ToLower(strings.TrimSpace(c.Transcription.Device))
	if c.Transcription.Device == "" {
		c.Transcription.Device = defaultWhisperDevice
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
}

func (c *Config) normalizeSpeech() {
	c.Speech.APIKey = strings.TrimSpace(c.Speech.APIKey)
	if c.Speech.APIKey == "" {
		if value, ok := os.LookupEnv("ELEVENLABS_API_KEY"); ok {
			c.Speech.APIKey = strings.TrimSpace(value)
		}
	}
	if value, ok := os.LookupEnv("ELEVENLABS_VOICE_ID"); ok && strings.TrimSpace(value) != "" {
		c.Speech.VoiceID = strings.TrimSpace(value)
	}
	c.Speech.VoiceID = strings.TrimSpace(c.Speech.VoiceID)
	if c.Speech.VoiceID == "" {
		c.Speech.VoiceID = defaultSpeechVoiceID
	}
	c.Speech.BaseURL = strings.TrimSpace(c.Speech.BaseURL)
	if c.Speech.BaseURL == "" {
		c.Speech.BaseURL = defaultSpeechBaseURL
	}
	c.Speech.ModelID = strings.TrimSpace(c.Speech.ModelID)
	if c.Speech.ModelID == "" {
		c.Speech.ModelID = defaultSpeechModelID
	}
	if c.Speech.TimeoutSeconds <= 0 {
		c.Speech.TimeoutSeconds = defaultSpeechTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func envInt(key string, target *int) error {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, value)
	}
	*target = parsed
	return nil
}

func envFloat(key string, target *float64) error {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("%s: invalid number %q", key, value)
	}
	*target = parsed
	return nil
}

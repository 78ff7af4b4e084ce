package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. API credentials are not
// checked here because skipped stages never need them; stage health checks
// report missing keys instead.
func (c *Config) Validate() error {
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateServices(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateVideo() error {
	if err := ensurePositiveMap(map[string]int{
		"video.width":             c.Video.Width,
		"video.height":            c.Video.Height,
		"video.fps":               c.Video.FPS,
		"video.max_reel_segments": c.Video.MaxReelSegments,
	}); err != nil {
		return err
	}
	if c.Video.SpeedFactor <= 0 {
		return errors.New("video.speed_factor must be positive")
	}
	if c.Video.ExtraDuration < 0 {
		return errors.New("video.extra_duration must be >= 0")
	}
	if c.Video.MusicVolume < 0 {
		return errors.New("video.bg_music_volume must be >= 0")
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		return errors.New("video.crf must be between 0 and 51")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if c.Subtitles.FontSize <= 0 {
		return errors.New("subtitles.font_size must be positive")
	}
	if c.Subtitles.OutlineWidth < 0 {
		return errors.New("subtitles.outline_width must be >= 0")
	}
	if c.Subtitles.OffsetY < 0 || c.Subtitles.OffsetY > float64(c.Video.Height) {
		return fmt.Errorf("subtitles.position_y_offset must be between 0 and video.height (%d)", c.Video.Height)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Device {
	case "cpu", "cuda":
		return nil
	default:
		return fmt.Errorf("transcription.device must be cpu or cuda, got %q", c.Transcription.Device)
	}
}

func (c *Config) validateServices() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if strings.TrimSpace(c.Speech.VoiceID) == "" {
		return errors.New("speech.voice_id must be set")
	}
	for key, value := range map[string]float64{
		"speech.stability":        c.Speech.Stability,
		"speech.similarity_boost": c.Speech.SimilarityBoost,
		"speech.style":            c.Speech.Style,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", key)
		}
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	EpisodesDir string `toml:"episodes_dir"`
	MusicDir    string `toml:"bg_music_dir"`
	VideosDir   string `toml:"bg_videos_dir"`
	StoriesFile string `toml:"stories_file"`
	PromptFile  string `toml:"prompt_file"`
	StateDir    string `toml:"state_dir"`
	LogDir      string `toml:"log_dir"`
	TempDir     string `toml:"temp_dir"`
}

// Video contains composition and render settings.
type Video struct {
	Width           int     `toml:"width"`
	Height          int     `toml:"height"`
	FPS             int     `toml:"fps"`
	MusicVolume     float64 `toml:"bg_music_volume"`
	SpeedFactor     float64 `toml:"speed_factor"`
	ExtraDuration   float64 `toml:"extra_duration"`
	MaxReelSegments int     `toml:"max_reel_segments"`
	VideoCodec      string  `toml:"video_codec"`
	AudioCodec      string  `toml:"audio_codec"`
	Preset          string  `toml:"preset"`
	CRF             int     `toml:"crf"`
	// Seed fixes the asset selection sequence. Zero picks a random seed per run.
	Seed uint64 `toml:"seed"`
}

// Subtitles contains caption style settings.
type Subtitles struct {
	FontSize     int     `toml:"font_size"`
	Color        string  `toml:"color"`
	Font         string  `toml:"font"`
	OutlineColor string  `toml:"outline_color"`
	OutlineWidth float64 `toml:"outline_width"`
	OffsetY      float64 `toml:"position_y_offset"`
}

// Transcription contains WhisperX settings.
type Transcription struct {
	Model    string `toml:"model"`
	Device   string `toml:"device"`
	Language string `toml:"language"`
}

// LLM contains chat completion settings for script generation.
type LLM struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Speech contains text-to-speech settings.
type Speech struct {
	APIKey          string  `toml:"api_key"`
	BaseURL         string  `toml:"base_url"`
	VoiceID         string  `toml:"voice_id"`
	ModelID         string  `toml:"model_id"`
	Stability       float64 `toml:"stability"`
	SimilarityBoost float64 `toml:"similarity_boost"`
	Style           float64 `toml:"style"`
	SpeakerBoost    bool    `toml:"use_speaker_boost"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
}

// Notifications contains ntfy settings. An empty topic disables them.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	// EpisodeSuccess sends a message for every completed episode, not only
	// failures and batch summaries.
	EpisodeSuccess bool `toml:"episode_success"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for storyreel.
//
// Configuration sections by subsystem:
//   - Paths: episode output, background asset directories, story sources
//   - Video: canvas, frame rate, mix levels, padding and encoder settings
//   - Subtitles: caption style and placement
//   - Transcription: WhisperX model size and compute device
//   - LLM: script generation endpoint
//   - Speech: narration synthesis endpoint and voice
//   - Notifications: optional ntfy topic for failures and batch summaries
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Video         Video         `toml:"video"`
	Subtitles     Subtitles     `toml:"subtitles"`
	Transcription Transcription `toml:"transcription"`
	LLM           LLM           `toml:"llm"`
	Speech        Speech        `toml:"speech"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/storyreel/config.toml")
}

// Load locates, parses, and validates a configuration file. Values from a
// .env file in the working directory are exported first so environment
// fallbacks see them; real environment variables always win.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("storyreel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories storyreel writes into. Asset
// directories are read-only inputs and are not created.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.EpisodesDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for rendering.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// HistoryPath returns the location of the run history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Asset directories are created empty; the stories file holds three stories.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.EpisodesDir = filepath.Join(base, "episodes")
	cfgVal.Paths.MusicDir = filepath.Join(base, "bg_music")
	cfgVal.Paths.VideosDir = filepath.Join(base, "bg_videos")
	cfgVal.Paths.StoriesFile = filepath.Join(base, "data", "stories.txt")
	cfgVal.Paths.PromptFile = filepath.Join(base, "data", "prompt.txt")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.TempDir = filepath.Join(base, "tmp")
	cfgVal.LLM.APIKey = "test"
	cfgVal.Speech.APIKey = "test"
	cfgVal.Video.Seed = 1

	for _, dir := range []string{cfgVal.Paths.MusicDir, cfgVal.Paths.VideosDir, cfgVal.Paths.TempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	WithStories("First story.", "Second story.", "Third story.")(builder)

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStories replaces the story catalogue.
func WithStories(stories ...string) ConfigOption {
	return func(b *configBuilder) {
		WriteText(b.t, b.cfg.Paths.StoriesFile, strings.Join(stories, "\n\n"))
	}
}

// WithSpeedFactor sets the narration speed factor.
func WithSpeedFactor(speed float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Video.SpeedFactor = speed
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg, ffprobe and uvx are
// stubbed. Each stub prints an ffmpeg filter listing that includes "ass".
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "uvx"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\necho ' T.. ass               V->V       Render ASS subtitles.'\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

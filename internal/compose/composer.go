package compose

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"storyreel/internal/logging"
	"storyreel/internal/media/ffmpeg"
	"storyreel/internal/media/ffprobe"
)

// Prober measures media files.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
	Duration(ctx context.Context, path string) (float64, error)
}

// Chooser picks an index in [0, n). *rand.Rand satisfies it.
type Chooser interface {
	IntN(n int) int
}

// NewChooser returns a PCG-backed chooser. A zero seed draws a random one.
func NewChooser(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Canvas is the output frame size.
type Canvas struct {
	Width  int
	Height int
}

// Encoder holds output codec options shared by both render passes.
type Encoder struct {
	VideoCodec string
	AudioCodec string
	Preset     string
	CRF        int
}

// Settings carries explicit composition parameters.
type Settings struct {
	Canvas          Canvas
	FPS             int
	MaxReelSegments int
	Encoder         Encoder
	Style           CaptionStyle
	// TempDir holds caption documents; empty uses the system default.
	TempDir string
}

// Composer builds and renders episode compositions.
type Composer struct {
	settings     Settings
	ffmpegBinary string
	run          ffmpeg.Runner
	probe        Prober
	chooser      Chooser
	logger       *slog.Logger
}

// Option customizes a Composer.
type Option func(*Composer)

// WithRunner replaces the ffmpeg command runner (for testing).
func WithRunner(run ffmpeg.Runner) Option {
	return func(c *Composer) {
		if run != nil {
			c.run = run
		}
	}
}

// WithChooser fixes the random source used for asset selection.
func WithChooser(chooser Chooser) Option {
	return func(c *Composer) {
		if chooser != nil {
			c.chooser = chooser
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) {
		c.logger = logging.NewComponentLogger(logger, "compose")
	}
}

// WithFFmpegBinary overrides the ffmpeg executable.
func WithFFmpegBinary(binary string) Option {
	return func(c *Composer) {
		if binary != "" {
			c.ffmpegBinary = binary
		}
	}
}

// New constructs a Composer.
func New(settings Settings, probe Prober, opts ...Option) *Composer {
	if settings.MaxReelSegments <= 0 {
		settings.MaxReelSegments = 1000
	}
	c := &Composer{
		settings:     settings,
		ffmpegBinary: "ffmpeg",
		run:          ffmpeg.Exec,
		probe:        probe,
		chooser:      NewChooser(0),
		logger:       logging.NewComponentLogger(nil, "compose"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Settings returns the composition parameters in use.
func (c *Composer) Settings() Settings {
	return c.settings
}

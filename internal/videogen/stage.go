package videogen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"storyreel/internal/compose"
	"storyreel/internal/config"
	"storyreel/internal/episode"
	"storyreel/internal/logging"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/services/whisperx"
	"storyreel/internal/stage"
)

// Name identifies the stage in logs and run history.
const Name = "video"

// Captioner derives caption spans from a rendered video.
type Captioner interface {
	Build(ctx context.Context, videoPath string) ([]compose.CaptionSpan, error)
}

// Stage renders the episode video.
type Stage struct {
	cfg      *config.Config
	logger   *slog.Logger
	composer *compose.Composer
	captions Captioner
}

// SettingsFromConfig maps configuration onto composition settings.
func SettingsFromConfig(cfg *config.Config) compose.Settings {
	return compose.Settings{
		Canvas:          compose.Canvas{Width: cfg.Video.Width, Height: cfg.Video.Height},
		FPS:             cfg.Video.FPS,
		MaxReelSegments: cfg.Video.MaxReelSegments,
		Encoder: compose.Encoder{
			VideoCodec: cfg.Video.VideoCodec,
			AudioCodec: cfg.Video.AudioCodec,
			Preset:     cfg.Video.Preset,
			CRF:        cfg.Video.CRF,
		},
		Style: compose.CaptionStyle{
			FontSize:     cfg.Subtitles.FontSize,
			Color:        cfg.Subtitles.Color,
			Font:         cfg.Subtitles.Font,
			OutlineColor: cfg.Subtitles.OutlineColor,
			OutlineWidth: cfg.Subtitles.OutlineWidth,
			OffsetY:      cfg.Subtitles.OffsetY,
		},
		TempDir: cfg.Paths.TempDir,
	}
}

// NewStage constructs the video stage with ffmpeg, ffprobe and WhisperX.
func NewStage(cfg *config.Config, logger *slog.Logger) *Stage {
	prober := ffprobe.NewProber(cfg.FFprobeBinary())
	composer := compose.New(SettingsFromConfig(cfg), prober,
		compose.WithLogger(logger),
		compose.WithChooser(compose.NewChooser(cfg.Video.Seed)),
		compose.WithFFmpegBinary(cfg.FFmpegBinary()),
	)
	transcriber := whisperx.NewService(whisperx.Config{
		Model:    cfg.Transcription.Model,
		Device:   cfg.Transcription.Device,
		Language: cfg.Transcription.Language,
	}, cfg.FFmpegBinary())
	captions := compose.NewCaptionBuilder(transcriber, cfg.Paths.TempDir, logger)
	return NewStageWithDependencies(cfg, logger, composer, captions)
}

// NewStageWithDependencies allows injecting collaborators (used in tests).
func NewStageWithDependencies(cfg *config.Config, logger *slog.Logger, composer *compose.Composer, captions Captioner) *Stage {
	return &Stage{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, Name),
		composer: composer,
		captions: captions,
	}
}

func (s *Stage) Name() string { return Name }

// Execute produces video.mp4, video_with_subs.mp4 and video_info.txt for ep.
// The speed-adjusted narration, when one is made, is removed once the base
// render finishes (or on any earlier failure). Other partial outputs stay.
func (s *Stage) Execute(ctx context.Context, ep episode.Episode) error {
	logger := logging.WithContext(ctx, s.logger)
	started := time.Now()

	if err := stage.RequireFile(Name, ep.AudioPath(), "audio"); err != nil {
		return err
	}

	narration, err := s.composer.NormalizeNarration(ctx, ep.AudioPath(), s.cfg.Video.SpeedFactor, ep.Dir)
	if err != nil {
		return err
	}
	defer s.release(logger, narration)

	target := narration.Duration + s.cfg.Video.ExtraDuration
	logger.Info("composing episode",
		logging.Seconds("narration", narration.Duration),
		logging.Seconds("target", target),
		logging.Float64("speed", narration.Speed),
	)

	music, err := s.composer.SelectMusic(ctx, s.cfg.Paths.MusicDir, target, s.cfg.Video.MusicVolume)
	if err != nil {
		return err
	}
	reel, err := s.composer.ComposeReel(ctx, s.cfg.Paths.VideosDir, target)
	if err != nil {
		return err
	}
	mix, err := compose.MixAudio(music, narration)
	if err != nil {
		return err
	}
	if err := s.composer.RenderBase(ctx, reel, mix, ep.VideoPath()); err != nil {
		return err
	}
	s.release(logger, narration)

	spans, err := s.captions.Build(ctx, ep.VideoPath())
	if err != nil {
		return err
	}
	if len(spans) == 0 {
		logger.Warn("transcription produced no words; rendering without captions",
			logging.String(logging.FieldEventType, "captions_empty"),
		)
	}
	if err := s.composer.RenderCaptions(ctx, ep.VideoPath(), spans, ep.CaptionedPath()); err != nil {
		return err
	}

	if err := compose.WriteManifest(ep.ManifestPath(), compose.NewManifest(music, reel)); err != nil {
		return err
	}

	logger.Info("episode video complete",
		logging.String("output", ep.CaptionedPath()),
		logging.String("music", music.Name),
		logging.Int("segments", len(reel.Segments)),
		logging.Int("captions", len(spans)),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return nil
}

func (s *Stage) release(logger *slog.Logger, narration *compose.Narration) {
	if err := narration.Release(); err != nil {
		logger.Warn("failed to remove speed-adjusted narration", logging.Error(err))
	}
}

// HealthCheck confirms both asset pools are populated.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	music, err := compose.ListAssets(s.cfg.Paths.MusicDir)
	if err != nil {
		return stage.Unhealthy(Name, err.Error())
	}
	clips, err := compose.ListAssets(s.cfg.Paths.VideosDir)
	if err != nil {
		return stage.Unhealthy(Name, err.Error())
	}
	return stage.Healthy(Name, fmt.Sprintf("%d music tracks, %d background clips", len(music), len(clips)))
}

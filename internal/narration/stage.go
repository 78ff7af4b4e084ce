package narration

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"storyreel/internal/config"
	"storyreel/internal/episode"
	"storyreel/internal/fileutil"
	"storyreel/internal/logging"
	"storyreel/internal/services"
	"storyreel/internal/services/speech"
	"storyreel/internal/stage"
)

// Name identifies the stage in logs and run history.
const Name = "audio"

// Synthesizer streams speech audio for text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, w io.Writer) (int64, error)
	HealthCheck(ctx context.Context) error
}

// Stage synthesizes narration audio.
type Stage struct {
	cfg    *config.Config
	logger *slog.Logger
	speech Synthesizer
}

// NewStage constructs the audio stage with the configured speech client.
func NewStage(cfg *config.Config, logger *slog.Logger) *Stage {
	client := speech.NewClient(speech.Config{
		APIKey:          cfg.Speech.APIKey,
		BaseURL:         cfg.Speech.BaseURL,
		VoiceID:         cfg.Speech.VoiceID,
		ModelID:         cfg.Speech.ModelID,
		Stability:       cfg.Speech.Stability,
		SimilarityBoost: cfg.Speech.SimilarityBoost,
		Style:           cfg.Speech.Style,
		SpeakerBoost:    cfg.Speech.SpeakerBoost,
		TimeoutSeconds:  cfg.Speech.TimeoutSeconds,
	})
	return NewStageWithDependencies(cfg, logger, client)
}

// NewStageWithDependencies allows injecting the speech client (used in tests).
func NewStageWithDependencies(cfg *config.Config, logger *slog.Logger, client Synthesizer) *Stage {
	return &Stage{cfg: cfg, logger: logging.NewComponentLogger(logger, Name), speech: client}
}

func (s *Stage) Name() string { return Name }

// Execute synthesizes audio.mp3 from script.txt.
func (s *Stage) Execute(ctx context.Context, ep episode.Episode) error {
	logger := logging.WithContext(ctx, s.logger)

	script, err := stage.ReadText(Name, ep.ScriptPath(), "script")
	if err != nil {
		return err
	}

	logger.Info("synthesizing narration",
		logging.Int("script_chars", len(script)),
		logging.String("voice_id", s.cfg.Speech.VoiceID),
		logging.String("model_id", s.cfg.Speech.ModelID),
	)
	started := time.Now()
	written, err := fileutil.WriteStreamAtomic(ep.AudioPath(), 0o644, func(w io.Writer) error {
		_, err := s.speech.Synthesize(ctx, script, w)
		return err
	})
	if err != nil {
		if services.Kind(err) == "error" {
			return services.Wrap(services.ErrIO, Name, "write audio", ep.AudioPath(), err)
		}
		return err
	}

	logger.Info("narration saved",
		logging.String("path", ep.AudioPath()),
		logging.String("size", humanize.Bytes(uint64(written.Bytes))),
		logging.String("sha256", written.SHA256),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return nil
}

// HealthCheck reports whether the speech client is configured.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if s.speech == nil {
		return stage.Unhealthy(Name, "speech client unavailable")
	}
	if err := s.speech.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(Name, err.Error())
	}
	return stage.Healthy(Name, "voice "+s.cfg.Speech.VoiceID+", model "+s.cfg.Speech.ModelID)
}

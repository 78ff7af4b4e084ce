package scriptgen

import (
	"context"
	"log/slog"
	"os"

	"storyreel/internal/config"
	"storyreel/internal/episode"
	"storyreel/internal/fileutil"
	"storyreel/internal/logging"
	"storyreel/internal/services"
	"storyreel/internal/services/llm"
	"storyreel/internal/stage"
	"storyreel/internal/story"
)

// Name identifies the stage in logs and run history.
const Name = "script"

// Completer produces a chat completion.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	HealthCheck(ctx context.Context) error
}

// Stage generates narration scripts.
type Stage struct {
	cfg    *config.Config
	logger *slog.Logger
	llm    Completer
}

// NewStage constructs the script stage with the configured LLM client.
func NewStage(cfg *config.Config, logger *slog.Logger) *Stage {
	client := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	return NewStageWithDependencies(cfg, logger, client)
}

// NewStageWithDependencies allows injecting the completion client (used in tests).
func NewStageWithDependencies(cfg *config.Config, logger *slog.Logger, client Completer) *Stage {
	return &Stage{cfg: cfg, logger: logging.NewComponentLogger(logger, Name), llm: client}
}

func (s *Stage) Name() string { return Name }

// Execute writes script.txt for ep. A previous script is replaced only once
// the new one has been generated.
func (s *Stage) Execute(ctx context.Context, ep episode.Episode) error {
	logger := logging.WithContext(ctx, s.logger)

	catalog, err := story.Load(s.cfg.Paths.StoriesFile)
	if err != nil {
		return err
	}
	storyText, err := catalog.Story(ep.Number)
	if err != nil {
		return err
	}
	prompt, err := story.LoadPrompt(s.cfg.Paths.PromptFile)
	if err != nil {
		return err
	}
	if prompt == "" {
		logger.Warn("system prompt missing; sending story without instructions",
			logging.String("prompt_file", s.cfg.Paths.PromptFile),
			logging.String(logging.FieldEventType, "prompt_missing"),
		)
	}

	logger.Info("generating script",
		logging.Int("story_chars", len(storyText)),
		logging.String("model", s.cfg.LLM.Model),
	)
	script, err := s.llm.Complete(ctx, prompt, storyText)
	if err != nil {
		return err
	}

	if err := ep.Ensure(); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(ep.ScriptPath(), []byte(script), 0o644); err != nil {
		return services.Wrap(services.ErrIO, Name, "write script", ep.ScriptPath(), err)
	}
	logger.Info("script written",
		logging.String("path", ep.ScriptPath()),
		logging.Int("chars", len(script)),
	)
	return nil
}

// HealthCheck reports whether the LLM is configured and the catalogue exists.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if s.llm == nil {
		return stage.Unhealthy(Name, "llm client unavailable")
	}
	if err := s.llm.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(Name, err.Error())
	}
	if _, err := os.Stat(s.cfg.Paths.StoriesFile); err != nil {
		return stage.Unhealthy(Name, "stories file unavailable: "+err.Error())
	}
	return stage.Healthy(Name, "model "+s.cfg.LLM.Model)
}

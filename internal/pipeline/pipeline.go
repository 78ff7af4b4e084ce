package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"storyreel/internal/config"
	"storyreel/internal/episode"
	"storyreel/internal/history"
	"storyreel/internal/logging"
	"storyreel/internal/narration"
	"storyreel/internal/notifications"
	"storyreel/internal/scriptgen"
	"storyreel/internal/services"
	"storyreel/internal/stage"
	"storyreel/internal/videogen"
)

// Recorder persists episode runs.
type Recorder interface {
	Record(ctx context.Context, run history.Run) (int64, error)
}

// Options toggle individual stages.
type Options struct {
	SkipScript bool
	SkipAudio  bool
	SkipVideo  bool
}

func (o Options) skips(name string) bool {
	switch name {
	case scriptgen.Name:
		return o.SkipScript
	case narration.Name:
		return o.SkipAudio
	case videogen.Name:
		return o.SkipVideo
	default:
		return false
	}
}

// Result is the outcome of one episode.
type Result struct {
	Episode     int
	RunID       string
	Status      history.Status
	FailedStage string
	Err         error
	Stages      []history.StageRecord
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Succeeded reports whether every attempted stage completed.
func (r Result) Succeeded() bool {
	return r.Status == history.StatusSucceeded
}

// Elapsed is the wall-clock time spent on the episode.
func (r Result) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Pipeline orchestrates the stage handlers.
type Pipeline struct {
	episodesDir string
	logger      *slog.Logger
	stages      []stage.Handler
	recorder    Recorder
	notifier    notifications.Service
}

// New constructs a pipeline with the production script, audio and video
// stages. recorder may be nil to disable run history.
func New(cfg *config.Config, logger *slog.Logger, recorder Recorder) *Pipeline {
	return NewWithStages(cfg, logger, recorder,
		scriptgen.NewStage(cfg, logger),
		narration.NewStage(cfg, logger),
		videogen.NewStage(cfg, logger),
	)
}

// NewWithStages constructs a pipeline running handlers in the given order.
func NewWithStages(cfg *config.Config, logger *slog.Logger, recorder Recorder, handlers ...stage.Handler) *Pipeline {
	return &Pipeline{
		episodesDir: cfg.Paths.EpisodesDir,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
		stages:      handlers,
		recorder:    recorder,
	}
}

// WithNotifier sets the service told about failures and batch summaries.
func (p *Pipeline) WithNotifier(notifier notifications.Service) *Pipeline {
	p.notifier = notifier
	return p
}

// Stages returns the configured handlers in execution order.
func (p *Pipeline) Stages() []stage.Handler {
	return append([]stage.Handler(nil), p.stages...)
}

// ProcessEpisode runs every non-skipped stage for episode number. Errors are
// reported through the Result rather than returned.
func (p *Pipeline) ProcessEpisode(ctx context.Context, number int, opts Options) Result {
	runID := uuid.NewString()
	ctx = services.WithRunID(services.WithEpisode(ctx, number), runID)
	logger := logging.WithContext(ctx, p.logger)

	result := Result{Episode: number, RunID: runID, StartedAt: time.Now().UTC()}
	logger.Info("episode started",
		logging.String(logging.FieldEventType, "episode_start"),
		logging.Bool("skip_script", opts.SkipScript),
		logging.Bool("skip_audio", opts.SkipAudio),
		logging.Bool("skip_video", opts.SkipVideo),
	)

	err := p.runStages(ctx, number, opts, &result)
	result.FinishedAt = time.Now().UTC()

	if err != nil {
		result.Status = history.StatusFailed
		result.Err = err
		failedStage := result.FailedStage
		if failedStage == "" {
			failedStage = "episode"
		}
		logging.ErrorWithContext(logger, "episode failed", "episode_failed", err,
			logging.String("failed_stage", failedStage),
			logging.Duration("elapsed", result.Elapsed()),
		)
	} else {
		result.Status = history.StatusSucceeded
		logger.Info("episode completed",
			logging.String(logging.FieldEventType, "episode_complete"),
			logging.Duration("elapsed", result.Elapsed()),
		)
	}

	p.record(ctx, logger, result)
	p.notifyEpisode(ctx, logger, result)
	return result
}

func (p *Pipeline) runStages(ctx context.Context, number int, opts Options, result *Result) error {
	ep, err := episode.New(p.episodesDir, number)
	if err != nil {
		return err
	}
	lock, err := ep.Lock()
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.WithContext(ctx, p.logger).Warn("episode lock release failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "lock_release_failed"),
				logging.String(logging.FieldErrorHint, "remove the stale lock file in the episode directory"),
			)
		}
	}()

	for _, handler := range p.stages {
		name := handler.Name()
		if opts.skips(name) {
			result.Stages = append(result.Stages, history.StageRecord{Stage: name, Status: history.StatusSkipped})
			continue
		}
		if err := ctx.Err(); err != nil {
			result.FailedStage = name
			return err
		}

		stageCtx := services.WithStage(ctx, name)
		stageLogger := logging.WithContext(stageCtx, p.logger)
		start := time.Now()
		stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

		execErr := handler.Execute(stageCtx, ep)
		record := history.StageRecord{Stage: name, Duration: time.Since(start)}
		if execErr != nil {
			record.Status = history.StatusFailed
			record.Error = strings.TrimSpace(execErr.Error())
			result.Stages = append(result.Stages, record)
			result.FailedStage = name
			return execErr
		}
		record.Status = history.StatusSucceeded
		result.Stages = append(result.Stages, record)
		stageLogger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.Duration("stage_duration", record.Duration),
		)
	}
	return nil
}

func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, result Result) {
	if p.recorder == nil {
		return
	}
	run := history.Run{
		RunID:       result.RunID,
		Episode:     result.Episode,
		Status:      result.Status,
		FailedStage: result.FailedStage,
		StartedAt:   result.StartedAt,
		FinishedAt:  result.FinishedAt,
		Stages:      result.Stages,
	}
	if result.Err != nil {
		run.ErrorKind = services.Kind(result.Err)
		run.ErrorMessage = strings.TrimSpace(result.Err.Error())
	}
	// Record even when the run was interrupted.
	if _, err := p.recorder.Record(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("run history not recorded",
			logging.Error(err),
			logging.String(logging.FieldEventType, "history_record_failed"),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
		)
	}
}

func (p *Pipeline) notifyEpisode(ctx context.Context, logger *slog.Logger, result Result) {
	if p.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	var err error
	if result.Succeeded() {
		err = p.notifier.NotifyEpisodeCompleted(ctx, result.Episode, result.Elapsed())
	} else {
		err = p.notifier.NotifyEpisodeFailed(ctx, result.Episode, result.FailedStage, result.Err)
	}
	if err != nil {
		logger.Warn("episode notification failed", logging.Error(err),
			logging.String(logging.FieldEventType, "notification_failed"))
	}
}

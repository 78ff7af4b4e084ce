package services

import "context"

type contextKey string

const (
	episodeKey contextKey = "episode"
	stageKey   contextKey = "stage"
	runIDKey   contextKey = "run_id"
)

// WithEpisode annotates context with the episode number.
func WithEpisode(ctx context.Context, episode int) context.Context {
	return context.WithValue(ctx, episodeKey, episode)
}

// EpisodeFromContext extracts the episode number if present.
func EpisodeFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(episodeKey).(int)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRunID annotates context with the run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

package preflight

import (
	"context"

	"storyreel/internal/config"
	"storyreel/internal/narration"
	"storyreel/internal/scriptgen"
	"storyreel/internal/stage"
	"storyreel/internal/videogen"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options select which stages RunAll checks for. Skipped stages do not need
// their credentials or inputs.
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

// RunAll checks the episodes directory, then asks each selected stage for
// its health. The video stage also needs ffmpeg, ffprobe and uvx.
func RunAll(ctx context.Context, cfg *config.Config, handlers []stage.Handler, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Episodes directory", cfg.Paths.EpisodesDir)}
	for _, handler := range handlers {
		if handler == nil || opts.skips(handler.Name()) {
			continue
		}
		results = append(results, CheckStage(ctx, handler))
	}
	if !opts.SkipVideo {
		for _, status := range CheckSystemDeps(ctx, cfg) {
			results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: statusDetail(status.Command, status.Detail)})
		}
	}
	return results
}

// CheckStage converts a stage health report into a Result.
func CheckStage(ctx context.Context, handler stage.Handler) Result {
	health := handler.HealthCheck(ctx)
	name := health.Name
	if name == "" {
		name = handler.Name()
	}
	detail := health.Detail
	if detail == "" && health.Ready {
		detail = "ready"
	}
	return Result{Name: "Stage " + name, Passed: health.Ready, Detail: detail}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func statusDetail(command, detail string) string {
	if detail != "" {
		return detail
	}
	return command
}

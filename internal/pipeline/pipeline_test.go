package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"storyreel/internal/compose"
	"storyreel/internal/config"
	"storyreel/internal/episode"
	"storyreel/internal/history"
	"storyreel/internal/logging"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/notifications"
	"storyreel/internal/services"
	"storyreel/internal/stage"
	"storyreel/internal/testsupport"
	"storyreel/internal/videogen"
)

type fakeStage struct {
	name  string
	fail  map[int]error
	calls []int
	ctxOK bool
}

func (f *fakeStage) Name() string { return f.name }

func (f *fakeStage) Execute(ctx context.Context, ep episode.Episode) error {
	f.calls = append(f.calls, ep.Number)
	if got, ok := services.StageFromContext(ctx); ok && got == f.name {
		if n, ok := services.EpisodeFromContext(ctx); ok && n == ep.Number {
			f.ctxOK = true
		}
	}
	if err := f.fail[ep.Number]; err != nil {
		return err
	}
	return nil
}

func (f *fakeStage) HealthCheck(context.Context) stage.Health { return stage.Healthy(f.name, "") }

type memoryRecorder struct {
	runs []history.Run
	err  error
}

func (m *memoryRecorder) Record(_ context.Context, run history.Run) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.runs = append(m.runs, run)
	return int64(len(m.runs)), nil
}

type staticCaptioner struct{}

func (staticCaptioner) Build(context.Context, string) ([]compose.CaptionSpan, error) {
	return []compose.CaptionSpan{{Start: 0, End: 0.4, Text: "Night"}}, nil
}

func newFakePipeline(t *testing.T, recorder Recorder) (*Pipeline, *fakeStage, *fakeStage, *fakeStage) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	script := &fakeStage{name: "script"}
	audio := &fakeStage{name: "audio"}
	video := &fakeStage{name: "video"}
	return NewWithStages(cfg, logging.NewNop(), recorder, script, audio, video), script, audio, video
}

func TestProcessEpisodeRunsStagesInOrder(t *testing.T) {
	recorder := &memoryRecorder{}
	p, script, audio, video := newFakePipeline(t, recorder)

	result := p.ProcessEpisode(context.Background(), 2, Options{})
	if !result.Succeeded() {
		t.Fatalf("expected success, got %v", result.Err)
	}
	for _, f := range []*fakeStage{script, audio, video} {
		if !reflect.DeepEqual(f.calls, []int{2}) {
			t.Fatalf("%s calls = %v", f.name, f.calls)
		}
		if !f.ctxOK {
			t.Fatalf("%s did not receive episode and stage context", f.name)
		}
	}
	if result.RunID == "" {
		t.Fatal("expected run id")
	}
	if len(recorder.runs) != 1 || recorder.runs[0].Status != history.StatusSucceeded {
		t.Fatalf("unexpected history: %+v", recorder.runs)
	}
	if len(recorder.runs[0].Stages) != 3 {
		t.Fatalf("expected three stage records, got %+v", recorder.runs[0].Stages)
	}
}

func TestProcessEpisodeSkipsStages(t *testing.T) {
	p, script, audio, video := newFakePipeline(t, nil)

	result := p.ProcessEpisode(context.Background(), 1, Options{SkipScript: true, SkipAudio: true})
	if !result.Succeeded() {
		t.Fatalf("expected success, got %v", result.Err)
	}
	if len(script.calls) != 0 || len(audio.calls) != 0 {
		t.Fatalf("skipped stages ran: script=%v audio=%v", script.calls, audio.calls)
	}
	if len(video.calls) != 1 {
		t.Fatalf("video calls = %v", video.calls)
	}
	statuses := []history.Status{result.Stages[0].Status, result.Stages[1].Status, result.Stages[2].Status}
	want := []history.Status{history.StatusSkipped, history.StatusSkipped, history.StatusSucceeded}
	if !reflect.DeepEqual(statuses, want) {
		t.Fatalf("statuses = %v, want %v", statuses, want)
	}
}

func TestProcessEpisodeStopsAtFirstFailure(t *testing.T) {
	recorder := &memoryRecorder{}
	p, _, audio, video := newFakePipeline(t, recorder)
	upstream := services.Wrap(services.ErrUpstream, "audio", "synthesize", "status 500", nil)
	audio.fail = map[int]error{3: upstream}

	result := p.ProcessEpisode(context.Background(), 3, Options{})
	if result.Succeeded() {
		t.Fatal("expected failure")
	}
	if result.FailedStage != "audio" {
		t.Fatalf("failed stage = %q", result.FailedStage)
	}
	if !errors.Is(result.Err, services.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", result.Err)
	}
	if len(video.calls) != 0 {
		t.Fatal("video stage should not run after audio failure")
	}
	run := recorder.runs[0]
	if run.ErrorKind != "upstream" || run.FailedStage != "audio" {
		t.Fatalf("unexpected recorded run: %+v", run)
	}
}

func TestProcessEpisodeRejectsInvalidNumber(t *testing.T) {
	p, script, _, _ := newFakePipeline(t, nil)

	result := p.ProcessEpisode(context.Background(), 0, Options{})
	if !errors.Is(result.Err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", result.Err)
	}
	if len(script.calls) != 0 {
		t.Fatal("no stage should run for an invalid episode")
	}
}

func TestProcessEpisodeReleasesLock(t *testing.T) {
	p, _, _, _ := newFakePipeline(t, nil)

	if result := p.ProcessEpisode(context.Background(), 4, Options{}); !result.Succeeded() {
		t.Fatalf("first run: %v", result.Err)
	}
	if result := p.ProcessEpisode(context.Background(), 4, Options{}); !result.Succeeded() {
		t.Fatalf("second run: %v", result.Err)
	}
	ep, _ := episode.New(p.episodesDir, 4)
	if _, err := os.Stat(filepath.Join(ep.Dir, ".storyreel.lock")); !os.IsNotExist(err) {
		t.Fatalf("lock file should be removed, stat err = %v", err)
	}
}

func TestProcessEpisodeHistoryFailureIsNotFatal(t *testing.T) {
	p, _, _, _ := newFakePipeline(t, &memoryRecorder{err: errors.New("disk full")})

	if result := p.ProcessEpisode(context.Background(), 1, Options{}); !result.Succeeded() {
		t.Fatalf("history failure should not fail the episode: %v", result.Err)
	}
}

func TestRunBatchContinuesAfterFailures(t *testing.T) {
	p, _, _, video := newFakePipeline(t, nil)
	video.fail = map[int]error{2: errors.New("render failed")}

	var seen []int
	summary, err := p.RunBatch(context.Background(), 1, 3, Options{}, func(r Result) { seen = append(seen, r.Episode) })
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(summary.Successful, []int{1, 3}) || !reflect.DeepEqual(summary.Failed, []int{2}) {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !reflect.DeepEqual(seen, []int{1, 2, 3}) {
		t.Fatalf("progress saw %v", seen)
	}
	if summary.Total() != 3 || summary.Interrupted {
		t.Fatalf("unexpected totals: %+v", summary)
	}
}

func TestRunBatchRejectsInvalidRange(t *testing.T) {
	p, _, _, _ := newFakePipeline(t, nil)

	if _, err := p.RunBatch(context.Background(), 5, 4, Options{}, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := p.RunBatch(context.Background(), 0, 4, Options{}, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunBatchStopsWhenCancelled(t *testing.T) {
	p, script, _, _ := newFakePipeline(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := p.RunBatch(ctx, 1, 3, Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !summary.Interrupted || summary.Total() != 0 || len(script.calls) != 0 {
		t.Fatalf("expected immediate interruption, got %+v", summary)
	}
}

// videoPipeline wires the real video stage against fake media tools.
func videoPipeline(t *testing.T, cfg *config.Config, media *testsupport.Media, recorder Recorder) *Pipeline {
	t.Helper()
	prober := ffprobe.NewProber("ffprobe").WithRunner(media.Probe)
	composer := compose.New(videogen.SettingsFromConfig(cfg), prober,
		compose.WithRunner(media.FFmpeg),
		compose.WithChooser(compose.NewChooser(cfg.Video.Seed)),
	)
	video := videogen.NewStageWithDependencies(cfg, logging.NewNop(), composer, staticCaptioner{})
	return NewWithStages(cfg, logging.NewNop(), recorder,
		&fakeStage{name: "script"}, &fakeStage{name: "audio"}, video)
}

func TestRunBatchMissingNarrationFailsOnlyThatEpisode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	media := testsupport.NewMedia()
	media.AddFile(t, filepath.Join(cfg.Paths.MusicDir, "track.mp3"), 40)
	media.AddFile(t, filepath.Join(cfg.Paths.VideosDir, "clip.mp4"), 15)
	for n := 5; n <= 10; n++ {
		if n == 7 {
			continue
		}
		ep, _ := episode.New(cfg.Paths.EpisodesDir, n)
		media.AddFile(t, ep.AudioPath(), 20)
	}

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	p := videoPipeline(t, cfg, media, store)
	summary, err := p.RunBatch(context.Background(), 5, 10, Options{SkipScript: true, SkipAudio: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(summary.Failed, []int{7}) {
		t.Fatalf("failed = %v, want [7]", summary.Failed)
	}
	if !reflect.DeepEqual(summary.Successful, []int{5, 6, 8, 9, 10}) {
		t.Fatalf("successful = %v", summary.Successful)
	}
	failed := summary.Results[2]
	if !errors.Is(failed.Err, services.ErrNotFound) || failed.FailedStage != videogen.Name {
		t.Fatalf("episode 7 result: stage=%q err=%v", failed.FailedStage, failed.Err)
	}
	for _, n := range summary.Successful {
		ep, _ := episode.New(cfg.Paths.EpisodesDir, n)
		if _, err := os.Stat(ep.ManifestPath()); err != nil {
			t.Fatalf("episode %d manifest: %v", n, err)
		}
	}

	runs, err := store.List(context.Background(), history.Filter{Episode: 7})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status != history.StatusFailed || runs[0].ErrorKind != "not_found" {
		t.Fatalf("unexpected history for episode 7: %+v", runs)
	}
}

func TestRunBatchEmptyMusicFailsEveryEpisode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	media := testsupport.NewMedia()
	media.AddFile(t, filepath.Join(cfg.Paths.VideosDir, "clip.mp4"), 15)
	for n := 1; n <= 2; n++ {
		ep, _ := episode.New(cfg.Paths.EpisodesDir, n)
		media.AddFile(t, ep.AudioPath(), 20)
	}

	p := videoPipeline(t, cfg, media, nil)
	summary, err := p.RunBatch(context.Background(), 1, 2, Options{SkipScript: true, SkipAudio: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(summary.Failed, []int{1, 2}) {
		t.Fatalf("failed = %v", summary.Failed)
	}
	for _, result := range summary.Results {
		if !errors.Is(result.Err, services.ErrNoAssets) {
			t.Fatalf("episode %d: expected no-assets error, got %v", result.Episode, result.Err)
		}
		ep, _ := episode.New(cfg.Paths.EpisodesDir, result.Episode)
		if _, err := os.Stat(ep.VideoPath()); !os.IsNotExist(err) {
			t.Fatalf("episode %d should not have a base render", result.Episode)
		}
	}
}

type recordingNotifier struct {
	completed []int
	failed    []string
	batches   []notifications.BatchSummary
}

func (r *recordingNotifier) NotifyEpisodeCompleted(_ context.Context, episode int, _ time.Duration) error {
	r.completed = append(r.completed, episode)
	return nil
}

func (r *recordingNotifier) NotifyEpisodeFailed(_ context.Context, episode int, stage string, _ error) error {
	r.failed = append(r.failed, fmt.Sprintf("%d:%s", episode, stage))
	return nil
}

func (r *recordingNotifier) NotifyBatchCompleted(_ context.Context, summary notifications.BatchSummary) error {
	r.batches = append(r.batches, summary)
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func TestRunBatchNotifies(t *testing.T) {
	p, script, _, _ := newFakePipeline(t, nil)
	script.fail = map[int]error{2: services.Wrap(services.ErrNotFound, "script", "load story", "story 2 out of range", nil)}
	notifier := &recordingNotifier{}
	p.WithNotifier(notifier)

	if _, err := p.RunBatch(context.Background(), 1, 3, Options{}, nil); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(notifier.completed, []int{1, 3}) {
		t.Fatalf("completed = %v", notifier.completed)
	}
	if !reflect.DeepEqual(notifier.failed, []string{"2:script"}) {
		t.Fatalf("failed = %v", notifier.failed)
	}
	if len(notifier.batches) != 1 {
		t.Fatalf("expected one batch summary, got %d", len(notifier.batches))
	}
	batch := notifier.batches[0]
	if batch.Start != 1 || batch.End != 3 || batch.Succeeded != 2 || !reflect.DeepEqual(batch.Failed, []int{2}) {
		t.Fatalf("unexpected batch summary: %+v", batch)
	}
}

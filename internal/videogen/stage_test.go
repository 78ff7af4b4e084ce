package videogen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/compose"
	"storyreel/internal/config"
	"storyreel/internal/episode"
	"storyreel/internal/logging"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/services"
	"storyreel/internal/testsupport"
)

type fakeCaptioner struct {
	spans []compose.CaptionSpan
	err   error
	seen  string
}

func (f *fakeCaptioner) Build(_ context.Context, videoPath string) ([]compose.CaptionSpan, error) {
	f.seen = videoPath
	return f.spans, f.err
}

type fixture struct {
	cfg      *config.Config
	ep       episode.Episode
	media    *testsupport.Media
	captions *fakeCaptioner
	stage    *Stage
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	ep, err := episode.New(cfg.Paths.EpisodesDir, 7)
	if err != nil {
		t.Fatal(err)
	}
	media := testsupport.NewMedia()
	media.AddFile(t, ep.AudioPath(), 60)
	media.AddFile(t, filepath.Join(cfg.Paths.MusicDir, "track.mp3"), 30)
	media.AddFile(t, filepath.Join(cfg.Paths.VideosDir, "city.mp4"), 20)
	media.AddFile(t, filepath.Join(cfg.Paths.VideosDir, "rain.mp4"), 45)

	prober := ffprobe.NewProber("ffprobe").WithRunner(media.Probe)
	composer := compose.New(SettingsFromConfig(cfg), prober,
		compose.WithRunner(media.FFmpeg),
		compose.WithChooser(compose.NewChooser(cfg.Video.Seed)),
	)
	captions := &fakeCaptioner{spans: []compose.CaptionSpan{{Start: 0, End: 0.5, Text: "It"}, {Start: 0.5, End: 0.8, Text: "began"}}}
	return &fixture{
		cfg:      cfg,
		ep:       ep,
		media:    media,
		captions: captions,
		stage:    NewStageWithDependencies(cfg, logging.NewNop(), composer, captions),
	}
}

func TestExecuteProducesAllOutputs(t *testing.T) {
	f := newFixture(t)
	if err := f.stage.Execute(context.Background(), f.ep); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, path := range []string{f.ep.VideoPath(), f.ep.CaptionedPath(), f.ep.ManifestPath()} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
	}
	if f.captions.seen != f.ep.VideoPath() {
		t.Fatalf("captions built from %q, want base render", f.captions.seen)
	}

	manifest, err := os.ReadFile(f.ep.ManifestPath())
	if err != nil {
		t.Fatal(err)
	}
	text := string(manifest)
	if !strings.HasPrefix(text, "Background Music File: track.mp3\nBackground Videos Used:\n") {
		t.Fatalf("unexpected manifest:\n%s", text)
	}
	if !strings.Contains(text, "Start Time: 0.00s") {
		t.Fatalf("manifest should start the reel at zero:\n%s", text)
	}

	commands := f.media.Commands()
	if len(commands) != 2 {
		t.Fatalf("expected base and caption renders, got %d ffmpeg calls", len(commands))
	}
	base := strings.Join(commands[0], " ")
	if !strings.Contains(base, "atrim=duration=60.000000") || !strings.Contains(base, "-t 65.000000") {
		t.Fatalf("base render should pad 60s narration to 65s: %s", base)
	}
}

func TestExecuteSpeedAdjustedNarrationIsRemoved(t *testing.T) {
	f := newFixture(t, testsupport.WithSpeedFactor(1.2))
	tempPath := filepath.Join(f.ep.Dir, compose.SpeedTempName)
	f.media.OnOutput = func(dest string) (float64, bool) {
		if dest == tempPath {
			return 50, true
		}
		return 0, false
	}

	if err := f.stage.Execute(context.Background(), f.ep); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := os.Stat(tempPath); !os.IsNotExist(err) {
		t.Fatalf("speed-adjusted narration should be removed: %v", err)
	}
	if _, err := os.Stat(f.ep.AudioPath()); err != nil {
		t.Fatalf("source narration must remain: %v", err)
	}
	base := strings.Join(f.media.Commands()[1], " ")
	if !strings.Contains(base, "-i "+tempPath) || !strings.Contains(base, "-t 55.000000") {
		t.Fatalf("base render should use the adjusted narration: %s", base)
	}
}

func TestExecuteEmptyMusicDirectory(t *testing.T) {
	f := newFixture(t, testsupport.WithSpeedFactor(1.5))
	tempPath := filepath.Join(f.ep.Dir, compose.SpeedTempName)
	f.media.OnOutput = func(dest string) (float64, bool) { return 40, dest == tempPath }
	if err := os.Remove(filepath.Join(f.cfg.Paths.MusicDir, "track.mp3")); err != nil {
		t.Fatal(err)
	}

	err := f.stage.Execute(context.Background(), f.ep)
	if !errors.Is(err, services.ErrNoAssets) {
		t.Fatalf("expected no assets, got %v", err)
	}
	for _, path := range []string{f.ep.VideoPath(), f.ep.CaptionedPath(), f.ep.ManifestPath(), tempPath} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("%s should not exist: %v", path, err)
		}
	}
}

func TestExecuteMissingNarration(t *testing.T) {
	f := newFixture(t)
	if err := os.Remove(f.ep.AudioPath()); err != nil {
		t.Fatal(err)
	}
	if err := f.stage.Execute(context.Background(), f.ep); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExecuteSilentNarrationStillRendersCaptionPass(t *testing.T) {
	f := newFixture(t)
	f.captions.spans = []compose.CaptionSpan{}
	if err := f.stage.Execute(context.Background(), f.ep); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := os.Stat(f.ep.CaptionedPath()); err != nil {
		t.Fatalf("captioned render expected: %v", err)
	}
}

func TestExecuteTranscriptionFailureKeepsBaseRender(t *testing.T) {
	f := newFixture(t)
	f.captions.err = services.Wrap(services.ErrExternalTool, "video", "transcribe", "whisperx failed", nil)
	err := f.stage.Execute(context.Background(), f.ep)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if _, err := os.Stat(f.ep.VideoPath()); err != nil {
		t.Fatalf("base render should be left in place: %v", err)
	}
	if _, err := os.Stat(f.ep.ManifestPath()); !os.IsNotExist(err) {
		t.Fatalf("manifest should not be written: %v", err)
	}
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.Default()
	settings := SettingsFromConfig(&cfg)
	if settings.Canvas.Width != 1620 || settings.Canvas.Height != 2880 || settings.FPS != 64 {
		t.Fatalf("unexpected canvas settings: %+v", settings)
	}
	if settings.Style.Font != "Arial-Bold" || settings.Style.OffsetY != 862.5 {
		t.Fatalf("unexpected caption style: %+v", settings.Style)
	}
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)
	h := f.stage.HealthCheck(context.Background())
	if !h.Ready || h.Detail != "1 music tracks, 2 background clips" {
		t.Fatalf("expected ready with asset counts: %+v", h)
	}
	if err := os.Remove(filepath.Join(f.cfg.Paths.VideosDir, "city.mp4")); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(f.cfg.Paths.VideosDir, "rain.mp4")); err != nil {
		t.Fatal(err)
	}
	if h := f.stage.HealthCheck(context.Background()); h.Ready {
		t.Fatal("expected unhealthy with empty video pool")
	}
}

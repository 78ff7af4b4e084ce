package compose

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"storyreel/internal/media/ffprobe"
)

type fakeProber struct {
	mu        sync.Mutex
	durations map[string]float64
	rates     map[string]string
	calls     map[string]int
}

func newFakeProber() *fakeProber {
	return &fakeProber{
		durations: map[string]float64{},
		rates:     map[string]string{},
		calls:     map[string]int{},
	}
}

func (p *fakeProber) set(path string, seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.durations[path] = seconds
}

func (p *fakeProber) Duration(_ context.Context, path string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[path]++
	d, ok := p.durations[path]
	if !ok {
		return 0, fmt.Errorf("no probe result for %s", path)
	}
	return d, nil
}

func (p *fakeProber) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	d, err := p.Duration(ctx, path)
	if err != nil {
		return ffprobe.Result{}, err
	}
	p.mu.Lock()
	rate := p.rates[path]
	p.mu.Unlock()
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "audio", SampleRate: rate}},
		Format:  ffprobe.Format{Duration: fmt.Sprintf("%f", d)},
	}, nil
}

// sequenceChooser returns the queued indices in order, wrapping around.
type sequenceChooser struct {
	picks []int
	next  int
}

func (s *sequenceChooser) IntN(n int) int {
	if len(s.picks) == 0 {
		return 0
	}
	v := s.picks[s.next%len(s.picks)] % n
	s.next++
	return v
}

type recordedCommand struct {
	name string
	args []string
}

// fakeRunner records invocations and creates the output file (the last
// argument) unless failWith is set.
type fakeRunner struct {
	mu       sync.Mutex
	commands []recordedCommand
	failWith error
	onRun    func(args []string)
}

func (r *fakeRunner) run(_ context.Context, name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, recordedCommand{name: name, args: append([]string(nil), args...)})
	if r.onRun != nil {
		r.onRun(args)
	}
	if r.failWith != nil {
		return r.failWith
	}
	if len(args) == 0 {
		return errors.New("no output")
	}
	dest := args[len(args)-1]
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte("media"), 0o644)
}

func (r *fakeRunner) last(t *testing.T) recordedCommand {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.commands, "expected an ffmpeg invocation")
	return r.commands[len(r.commands)-1]
}

func writeAssets(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func testSettings() Settings {
	return Settings{
		Canvas:          Canvas{Width: 1620, Height: 2880},
		FPS:             64,
		MaxReelSegments: 1000,
		Encoder:         Encoder{VideoCodec: "libx264", AudioCodec: "aac", Preset: "medium", CRF: 18},
		Style: CaptionStyle{
			FontSize:     110,
			Color:        "white",
			Font:         "Arial-Bold",
			OutlineColor: "black",
			OutlineWidth: 2,
			OffsetY:      862.5,
		},
	}
}

// argValue returns the argument following flag, or "" when absent.
func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

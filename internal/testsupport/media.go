package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// Media fakes ffprobe and ffmpeg for tests. Durations are registered per
// path; ffmpeg invocations create their output file (the last argument) and
// can register its duration through OnOutput.
type Media struct {
	mu        sync.Mutex
	durations map[string]float64
	commands  [][]string

	// OnOutput, when set, returns the duration to register for an ffmpeg
	// output path. Outputs without a duration are created but unprobeable.
	OnOutput func(dest string) (float64, bool)
	// FailFFmpeg makes every ffmpeg invocation fail.
	FailFFmpeg error
}

// NewMedia returns an empty fake.
func NewMedia() *Media {
	return &Media{durations: map[string]float64{}}
}

// AddFile writes a placeholder file and registers its duration.
func (m *Media) AddFile(t testing.TB, path string, seconds float64) {
	t.Helper()
	WriteFile(t, path, 16)
	m.SetDuration(path, seconds)
}

// SetDuration registers the duration reported for path.
func (m *Media) SetDuration(path string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[path] = seconds
}

// Commands returns a copy of every ffmpeg argument list seen so far.
func (m *Media) Commands() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.commands))
	copy(out, m.commands)
	return out
}

// Probe implements ffprobe.OutputRunner. The probed path is the last argument.
func (m *Media) Probe(_ context.Context, _ string, args ...string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("ffprobe: no arguments")
	}
	path := args[len(args)-1]
	m.mu.Lock()
	seconds, ok := m.durations[path]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("ffprobe: %s: No such file or directory", path)
	}
	payload := fmt.Sprintf(`{"streams":[{"index":0,"codec_type":"audio","sample_rate":"44100","channels":2}],"format":{"filename":%q,"duration":"%f"}}`, path, seconds)
	return []byte(payload), nil
}

// FFmpeg implements ffmpeg.Runner.
func (m *Media) FFmpeg(_ context.Context, _ string, args ...string) error {
	m.mu.Lock()
	m.commands = append(m.commands, append([]string(nil), args...))
	fail := m.FailFFmpeg
	onOutput := m.OnOutput
	m.mu.Unlock()

	if fail != nil {
		return fail
	}
	if len(args) == 0 {
		return fmt.Errorf("ffmpeg: no output")
	}
	dest := args[len(args)-1]
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(dest, []byte("rendered"), 0o644); err != nil {
		return err
	}
	if onOutput != nil {
		if seconds, ok := onOutput(dest); ok {
			m.SetDuration(dest, seconds)
		}
	}
	return nil
}

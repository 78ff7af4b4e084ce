package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandRunner executes an external command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Service wraps the two external tools the caption pass needs: ffmpeg to
// pull narration out of the base render and WhisperX (via uvx) to align it.
type Service struct {
	cfg    Config
	ffmpeg string
	run    CommandRunner
}

// NewService creates a WhisperX service. An empty ffmpegBinary falls back to
// FFmpegCommand on PATH.
func NewService(cfg Config, ffmpegBinary string) *Service {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = FFmpegCommand
	}
	return &Service{cfg: cfg, ffmpeg: ffmpegBinary, run: execRunner}
}

// WithCommandRunner replaces command execution (for testing).
func (s *Service) WithCommandRunner(runner CommandRunner) {
	if runner == nil {
		runner = execRunner
	}
	s.run = runner
}

// Model returns the configured model name, defaulting to DefaultModel.
func (s *Service) Model() string {
	if model := strings.TrimSpace(s.cfg.Model); model != "" {
		return model
	}
	return DefaultModel
}

// Device returns "cuda" when configured, otherwise "cpu".
func (s *Service) Device() string {
	if strings.EqualFold(strings.TrimSpace(s.cfg.Device), CUDADevice) {
		return CUDADevice
	}
	return CPUDevice
}

// ExtractAudio writes the first audio stream of source to dest as a mono
// 16 kHz WAV file.
func (s *Service) ExtractAudio(ctx context.Context, source, dest string) error {
	if err := s.run(ctx, s.ffmpeg, buildExtractArgs(source, dest)...); err != nil {
		return fmt.Errorf("ffmpeg extract: %w", err)
	}
	return nil
}

// Transcribe runs WhisperX on source with JSON output in outputDir (the
// directory of source when empty) and decodes the word-timed segments.
func (s *Service) Transcribe(ctx context.Context, source, outputDir string) ([]Segment, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("transcribe: source path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}
	if err := s.run(ctx, UVXCommand, s.buildArgs(source, outputDir)...); err != nil {
		return nil, fmt.Errorf("whisperx: %w", err)
	}
	return LoadSegments(transcriptPath(source, outputDir))
}

// transcriptPath is where WhisperX writes JSON for source: the source base
// name with its extension replaced.
func transcriptPath(source, outputDir string) string {
	base := filepath.Base(source)
	return filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base))+"."+OutputFormat)
}

func (s *Service) buildArgs(source, outputDir string) []string {
	device, compute := CPUDevice, CPUComputeType
	index := []string{"--index-url", PypiIndexURL}
	if s.Device() == CUDADevice {
		device, compute = CUDADevice, CUDAComputeType
		index = []string{"--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL}
	}

	args := append(index,
		"whisperx", source,
		"--model", s.Model(),
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
	)
	if lang := strings.TrimSpace(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	return append(args, "--device", device, "--compute_type", compute)
}

func execRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	// Alignment checkpoints fail to load under torch's weights_only default.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Word is one aligned token. WhisperX omits start and end when alignment
// fails for a token (numerals, symbols).
type Word struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

// Segment is one transcribed segment.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

// LoadSegments decodes a WhisperX JSON transcript.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Segments []Segment `json:"segments"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.Segments, nil
}

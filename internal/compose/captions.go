package compose

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"storyreel/internal/logging"
	"storyreel/internal/services"
	"storyreel/internal/services/whisperx"
)

// CaptionSpan is a timed piece of text shown during [Start, End).
type CaptionSpan struct {
	Start float64
	End   float64
	Text  string
}

// Transcriber extracts narration audio from a video and transcribes it into
// word-aligned segments.
type Transcriber interface {
	ExtractAudio(ctx context.Context, source, dest string) error
	Transcribe(ctx context.Context, source, outputDir string) ([]whisperx.Segment, error)
}

// CaptionBuilder derives word-level caption spans from a rendered video.
type CaptionBuilder struct {
	transcriber Transcriber
	tempDir     string
	logger      *slog.Logger
}

// NewCaptionBuilder constructs a builder. An empty tempDir uses the system
// temporary directory.
func NewCaptionBuilder(transcriber Transcriber, tempDir string, logger *slog.Logger) *CaptionBuilder {
	return &CaptionBuilder{
		transcriber: transcriber,
		tempDir:     tempDir,
		logger:      logging.NewComponentLogger(logger, "captions"),
	}
}

// Build extracts the audio track of videoPath to a temporary waveform,
// transcribes it, and returns one span per recognized word in transcript
// order. The waveform and transcription output are removed before
// returning. Silence yields an empty slice.
func (b *CaptionBuilder) Build(ctx context.Context, videoPath string) ([]CaptionSpan, error) {
	if b == nil || b.transcriber == nil {
		return nil, services.Wrap(services.ErrConfiguration, "video", "build captions", "transcriber unavailable", nil)
	}

	wav, err := os.CreateTemp(b.tempDir, "storyreel-narration-*.wav")
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "video", "build captions", "create waveform file", err)
	}
	wavPath := wav.Name()
	_ = wav.Close()
	defer os.Remove(wavPath)

	if err := b.transcriber.ExtractAudio(ctx, videoPath, wavPath); err != nil {
		return nil, services.Wrap(services.ErrIO, "video", "extract audio", videoPath, err)
	}

	outDir, err := os.MkdirTemp(b.tempDir, "storyreel-whisperx-*")
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "video", "build captions", "create transcription directory", err)
	}
	defer os.RemoveAll(outDir)

	segments, err := b.transcriber.Transcribe(ctx, wavPath, outDir)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "video", "transcribe", "whisperx failed", err)
	}

	spans := FlattenSegments(segments)
	b.logger.Info("captions built",
		logging.Int("segments", len(segments)),
		logging.Int("words", len(spans)),
	)
	return spans, nil
}

// FlattenSegments maps every word of every segment to one span, preserving
// order. Missing word timings borrow from the neighbouring word or the
// enclosing segment so each span satisfies Start <= End.
func FlattenSegments(segments []whisperx.Segment) []CaptionSpan {
	spans := make([]CaptionSpan, 0)
	for _, segment := range segments {
		cursor := segment.Start
		for _, word := range segment.Words {
			start := cursor
			if word.Start != nil {
				start = *word.Start
			}
			end := start
			if word.End != nil {
				end = *word.End
			}
			if end < start {
				end = start
			}
			spans = append(spans, CaptionSpan{
				Start: start,
				End:   end,
				Text:  norm.NFC.String(strings.TrimSpace(word.Word)),
			})
			cursor = end
		}
	}
	return spans
}

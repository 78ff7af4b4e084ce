package compose

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyreel/internal/services"
	"storyreel/internal/services/whisperx"
)

func ptr(v float64) *float64 { return &v }

type fakeTranscriber struct {
	segments   []whisperx.Segment
	extractErr error
	err        error
	wavPath    string
	outDir     string
}

func (f *fakeTranscriber) ExtractAudio(_ context.Context, _, dest string) error {
	f.wavPath = dest
	if f.extractErr != nil {
		return f.extractErr
	}
	return os.WriteFile(dest, []byte("RIFF"), 0o644)
}

func (f *fakeTranscriber) Transcribe(_ context.Context, source, outputDir string) ([]whisperx.Segment, error) {
	f.outDir = outputDir
	if f.err != nil {
		return nil, f.err
	}
	if _, err := os.Stat(source); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "narration.json"), []byte("{}"), 0o644); err != nil {
		return nil, err
	}
	return f.segments, nil
}

func TestCaptionBuilderOneSpanPerWord(t *testing.T) {
	tempDir := t.TempDir()
	transcriber := &fakeTranscriber{segments: []whisperx.Segment{
		{Text: "Once upon", Start: 0, End: 1, Words: []whisperx.Word{
			{Word: " Once", Start: ptr(0.1), End: ptr(0.4)},
			{Word: "upon ", Start: ptr(0.4), End: ptr(0.9)},
		}},
		{Text: "a time", Start: 1.2, End: 2, Words: []whisperx.Word{
			{Word: "a", Start: ptr(1.2), End: ptr(1.3)},
			{Word: "time", Start: ptr(1.35), End: ptr(1.9)},
		}},
	}}
	builder := NewCaptionBuilder(transcriber, tempDir, nil)

	spans, err := builder.Build(context.Background(), "/ep/video.mp4")
	require.NoError(t, err)
	require.Len(t, spans, 4)
	assert.Equal(t, []string{"Once", "upon", "a", "time"}, []string{spans[0].Text, spans[1].Text, spans[2].Text, spans[3].Text})
	for i, span := range spans {
		assert.LessOrEqual(t, span.Start, span.End)
		if i > 0 {
			assert.LessOrEqual(t, spans[i-1].Start, span.Start)
		}
	}

	assert.NoFileExists(t, transcriber.wavPath)
	assert.NoDirExists(t, transcriber.outDir)
	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCaptionBuilderSilence(t *testing.T) {
	builder := NewCaptionBuilder(&fakeTranscriber{}, t.TempDir(), nil)
	spans, err := builder.Build(context.Background(), "/ep/video.mp4")
	require.NoError(t, err)
	assert.NotNil(t, spans)
	assert.Empty(t, spans)
}

func TestCaptionBuilderErrors(t *testing.T) {
	t.Run("extraction", func(t *testing.T) {
		transcriber := &fakeTranscriber{extractErr: errors.New("no audio stream")}
		_, err := NewCaptionBuilder(transcriber, t.TempDir(), nil).Build(context.Background(), "/ep/video.mp4")
		require.ErrorIs(t, err, services.ErrIO)
		assert.NoFileExists(t, transcriber.wavPath)
	})
	t.Run("transcription", func(t *testing.T) {
		transcriber := &fakeTranscriber{err: errors.New("uvx: not found")}
		_, err := NewCaptionBuilder(transcriber, t.TempDir(), nil).Build(context.Background(), "/ep/video.mp4")
		require.ErrorIs(t, err, services.ErrExternalTool)
		assert.Equal(t, "external_tool", services.Kind(err))
		assert.NoFileExists(t, transcriber.wavPath)
	})
	t.Run("no transcriber", func(t *testing.T) {
		_, err := NewCaptionBuilder(nil, "", nil).Build(context.Background(), "/ep/video.mp4")
		require.ErrorIs(t, err, services.ErrConfiguration)
	})
}

func TestFlattenSegmentsFillsMissingTimings(t *testing.T) {
	segments := []whisperx.Segment{{
		Start: 2.0,
		End:   4.0,
		Words: []whisperx.Word{
			{Word: "1999", Start: nil, End: nil},
			{Word: "was", Start: ptr(2.2), End: ptr(2.5)},
			{Word: "42", Start: nil, End: ptr(2.9)},
			{Word: "odd", Start: ptr(3.1), End: ptr(3.0)},
			{Word: "café", Start: ptr(3.2), End: ptr(3.6)},
		},
	}}

	spans := FlattenSegments(segments)
	require.Len(t, spans, 5)
	assert.Equal(t, CaptionSpan{Start: 2.0, End: 2.0, Text: "1999"}, spans[0])
	assert.Equal(t, CaptionSpan{Start: 2.5, End: 2.9, Text: "42"}, spans[2])
	assert.Equal(t, CaptionSpan{Start: 3.1, End: 3.1, Text: "odd"}, spans[3])
	assert.Equal(t, "café", spans[4].Text)
}

func TestFlattenSegmentsEmpty(t *testing.T) {
	spans := FlattenSegments(nil)
	assert.NotNil(t, spans)
	assert.Empty(t, spans)
}

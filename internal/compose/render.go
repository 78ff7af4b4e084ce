package compose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"storyreel/internal/logging"
	"storyreel/internal/media/ffmpeg"
	"storyreel/internal/services"
)

// BaseRenderArgs builds the first-pass ffmpeg invocation: every reel segment
// is cut to its contributed duration and scaled to the canvas, the segments
// are concatenated in order, and the mixed audio is attached.
//
// Scaling happens per segment before concat because concat needs uniform
// frame sizes; the frames match a scale of the concatenated clip.
func (c *Composer) BaseRenderArgs(reel Reel, mix Mix, dest string) ([]string, error) {
	if len(reel.Segments) == 0 {
		return nil, services.Wrap(services.ErrValidation, "video", "render base", "reel has no segments", nil)
	}
	if mix.Narration == nil {
		return nil, services.Wrap(services.ErrValidation, "video", "render base", "mix has no narration", nil)
	}
	canvas := reel.Canvas
	if canvas.Width <= 0 || canvas.Height <= 0 {
		canvas = c.settings.Canvas
	}
	fps := strconv.Itoa(c.settings.FPS)

	cmd := ffmpeg.NewCommand()
	labels := make([]string, 0, len(reel.Segments))
	for i, segment := range reel.Segments {
		idx := cmd.Input(segment.Path, "-t", ffmpeg.Seconds(segment.Duration))
		label := fmt.Sprintf("[v%d]", i)
		cmd.Filter(fmt.Sprintf("[%d:v]trim=duration=%s,setpts=PTS-STARTPTS,fps=%s,scale=%d:%d,setsar=1%s",
			idx, ffmpeg.Seconds(segment.Duration), fps, canvas.Width, canvas.Height, label))
		labels = append(labels, label)
	}
	cmd.Filter(fmt.Sprintf("%sconcat=n=%d:v=1:a=0[vout]", strings.Join(labels, ""), len(labels)))

	narrationIdx := cmd.Input(mix.Narration.Path)
	musicIdx := cmd.Input(mix.Music.Path, "-stream_loop", "-1")
	cmd.Filter(fmt.Sprintf("[%d:a]atrim=duration=%s,asetpts=PTS-STARTPTS[narration]",
		narrationIdx, ffmpeg.Seconds(mix.NarrationEnd)))
	cmd.Filter(fmt.Sprintf("[%d:a]atrim=duration=%s,asetpts=PTS-STARTPTS,volume=%s[music]",
		musicIdx, ffmpeg.Seconds(mix.Duration), ffmpeg.Number(mix.Music.Volume)))
	cmd.Filter("[music][narration]amix=inputs=2:duration=first:dropout_transition=0:normalize=0[aout]")

	cmd.Map("[vout]")
	cmd.Map("[aout]")
	cmd.Output(c.videoOutputArgs()...)
	cmd.Output("-c:a", c.settings.Encoder.AudioCodec, "-t", ffmpeg.Seconds(mix.Duration), "-movflags", "+faststart")
	return cmd.Args(dest), nil
}

// RenderBase writes the first-pass video to dest. Failures are not retried
// and a partial file is left in place.
func (c *Composer) RenderBase(ctx context.Context, reel Reel, mix Mix, dest string) error {
	args, err := c.BaseRenderArgs(reel, mix, dest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return services.Wrap(services.ErrIO, "video", "render base", "create output directory", err)
	}
	c.logger.Info("rendering base video",
		logging.String("output", dest),
		logging.Int("segments", len(reel.Segments)),
		logging.Seconds("duration", mix.Duration),
	)
	if err := c.run(ctx, c.ffmpegBinary, args...); err != nil {
		return services.Wrap(services.ErrIO, "video", "render base", "ffmpeg failed", err)
	}
	return nil
}

// CaptionRenderArgs builds the second-pass invocation burning the ASS
// document at captionsPath into source. The first audio stream of source is
// mapped explicitly and re-encoded.
func (c *Composer) CaptionRenderArgs(source, captionsPath, dest string) []string {
	cmd := ffmpeg.NewCommand()
	cmd.Input(source)
	cmd.Filter("[0:v]ass=filename=" + ffmpeg.EscapeFilterValue(captionsPath) + "[vout]")
	cmd.Map("[vout]")
	cmd.Map("0:a:0")
	cmd.Output(c.videoOutputArgs()...)
	cmd.Output("-c:a", c.settings.Encoder.AudioCodec, "-movflags", "+faststart")
	return cmd.Args(dest)
}

// RenderCaptions overlays spans on source and writes dest. The caption
// document is a temporary file removed after the render whether or not it
// succeeds. Zero spans still render, producing a video without overlays.
func (c *Composer) RenderCaptions(ctx context.Context, source string, spans []CaptionSpan, dest string) error {
	document, err := BuildASS(spans, c.settings.Style, c.settings.Canvas)
	if err != nil {
		return err
	}

	file, err := os.CreateTemp(c.settings.TempDir, "storyreel-captions-*.ass")
	if err != nil {
		return services.Wrap(services.ErrIO, "video", "render captions", "create caption document", err)
	}
	captionsPath := file.Name()
	defer os.Remove(captionsPath)

	if _, err := file.Write(document); err != nil {
		file.Close()
		return services.Wrap(services.ErrIO, "video", "render captions", "write caption document", err)
	}
	if err := file.Close(); err != nil {
		return services.Wrap(services.ErrIO, "video", "render captions", "close caption document", err)
	}

	c.logger.Info("rendering captioned video",
		logging.String("output", dest),
		logging.Int("captions", len(spans)),
	)
	if err := c.run(ctx, c.ffmpegBinary, c.CaptionRenderArgs(source, captionsPath, dest)...); err != nil {
		return services.Wrap(services.ErrIO, "video", "render captions", "ffmpeg failed", err)
	}
	return nil
}

func (c *Composer) videoOutputArgs() []string {
	enc := c.settings.Encoder
	args := []string{"-c:v", enc.VideoCodec}
	if enc.Preset != "" {
		args = append(args, "-preset", enc.Preset)
	}
	if enc.VideoCodec == "libx264" || enc.VideoCodec == "libx265" {
		args = append(args, "-crf", strconv.Itoa(enc.CRF))
	}
	return append(args, "-pix_fmt", "yuv420p", "-r", strconv.Itoa(c.settings.FPS))
}

package compose

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"storyreel/internal/logging"
	"storyreel/internal/media/ffmpeg"
	"storyreel/internal/services"
)

// SpeedTempName is the sibling file holding speed-adjusted narration.
const SpeedTempName = "script_temp.mp3"

const fallbackSampleRate = 44100

// Narration is a duration-bearing handle over narration audio.
type Narration struct {
	// Path is the file to render from: the source itself or the speed-adjusted copy.
	Path string
	// Source is the original narration file.
	Source    string
	Duration  float64
	Speed     float64
	Temporary bool
}

// Release removes the speed-adjusted copy. It is a no-op for handles over
// the source file and safe to call more than once.
func (n *Narration) Release() error {
	if n == nil || !n.Temporary {
		return nil
	}
	if err := os.Remove(n.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return services.Wrap(services.ErrIO, "video", "release narration", n.Path, err)
	}
	return nil
}

// NormalizeNarration measures the narration at path. A speed of 1.0 returns a
// handle over the source file without touching the disk. Any other speed
// rewrites the playback rate (asetrate) and resamples back to the source rate,
// so duration scales by 1/speed and pitch shifts with it; the result is
// written to SpeedTempName in workDir.
func (c *Composer) NormalizeNarration(ctx context.Context, path string, speed float64, workDir string) (*Narration, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "video", "normalize narration", "narration audio "+path+" not found", err)
		}
		return nil, services.Wrap(services.ErrIO, "video", "normalize narration", path, err)
	}
	if speed <= 0 {
		return nil, services.Wrap(services.ErrValidation, "video", "normalize narration", "speed factor must be positive", nil)
	}

	if speed == 1.0 {
		duration, err := c.probe.Duration(ctx, path)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "video", "probe narration", path, err)
		}
		return &Narration{Path: path, Source: path, Duration: duration, Speed: speed}, nil
	}

	info, err := c.probe.Inspect(ctx, path)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "video", "probe narration", path, err)
	}
	rate := info.AudioSampleRate()
	if rate <= 0 {
		rate = fallbackSampleRate
	}

	dest := filepath.Join(workDir, SpeedTempName)
	cmd := ffmpeg.NewCommand()
	cmd.Input(path)
	cmd.Map("0:a:0")
	cmd.Output(
		"-filter:a", speedFilter(rate, speed),
		"-vn",
		"-c:a", "libmp3lame",
		"-q:a", "2",
	)
	narration := &Narration{Path: dest, Source: path, Speed: speed, Temporary: true}
	if err := c.run(ctx, c.ffmpegBinary, cmd.Args(dest)...); err != nil {
		_ = narration.Release()
		return nil, services.Wrap(services.ErrIO, "video", "speed narration", "ffmpeg failed", err)
	}

	duration, err := c.probe.Duration(ctx, dest)
	if err != nil {
		_ = narration.Release()
		return nil, services.Wrap(services.ErrIO, "video", "probe narration", dest, err)
	}
	narration.Duration = duration

	c.logger.Debug("narration speed adjusted",
		logging.Float64("speed", speed),
		logging.Int("sample_rate", rate),
		logging.Seconds("duration", duration),
	)
	return narration, nil
}

// speedFilter reinterprets samples at rate*speed, then resamples to rate.
func speedFilter(rate int, speed float64) string {
	spoofed := int(float64(rate) * speed)
	return "asetrate=" + strconv.Itoa(spoofed) + ",aresample=" + strconv.Itoa(rate)
}

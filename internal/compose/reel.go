package compose

import (
	"context"
	"fmt"
	"path/filepath"

	"storyreel/internal/logging"
	"storyreel/internal/services"
)

// durationEpsilon absorbs float drift when comparing against the budget.
const durationEpsilon = 1e-9

// Segment is one slice of the background reel timeline.
type Segment struct {
	// File is the source file name as reported in the run manifest.
	File string
	Path string
	// Start is the cumulative offset of this segment within the reel.
	Start float64
	// Duration is the contributed length, a prefix of the source clip.
	Duration       float64
	SourceDuration float64
}

// Trimmed reports whether only a prefix of the source clip is used.
func (s Segment) Trimmed() bool {
	return s.Duration < s.SourceDuration-durationEpsilon
}

// Reel is an ordered background clip sequence resized to a canvas.
type Reel struct {
	Segments []Segment
	Canvas   Canvas
	Duration float64
}

// ComposeReel draws clips from dir uniformly at random with replacement
// until they fill target seconds. Whole clips are appended while they fit;
// the clip that would overrun the budget is trimmed to the remainder and
// ends the reel, so segment durations sum to target. Clip audio is ignored.
//
// The number of segments is capped by MaxReelSegments.
func (c *Composer) ComposeReel(ctx context.Context, dir string, target float64) (Reel, error) {
	if target <= 0 {
		return Reel{}, services.Wrap(services.ErrValidation, "video", "compose reel", "target duration must be positive", nil)
	}
	files, err := ListAssets(dir)
	if err != nil {
		return Reel{}, err
	}

	durations := make(map[string]float64, len(files))
	reel := Reel{Canvas: c.settings.Canvas, Duration: target}
	current := 0.0

	for current < target {
		if len(reel.Segments) >= c.settings.MaxReelSegments {
			return Reel{}, services.Wrap(services.ErrValidation, "video", "compose reel",
				fmt.Sprintf("reel needs more than %d segments to fill %.2fs; add longer clips or raise video.max_reel_segments", c.settings.MaxReelSegments, target), nil)
		}
		if err := ctx.Err(); err != nil {
			return Reel{}, err
		}

		name := c.pick(files)
		path := filepath.Join(dir, name)
		clipDuration, ok := durations[path]
		if !ok {
			clipDuration, err = c.probe.Duration(ctx, path)
			if err != nil {
				return Reel{}, services.Wrap(services.ErrIO, "video", "probe clip", path, err)
			}
			if clipDuration <= 0 {
				return Reel{}, services.Wrap(services.ErrValidation, "video", "probe clip", path+" has no duration", nil)
			}
			durations[path] = clipDuration
		}

		segment := Segment{File: name, Path: path, Start: current, Duration: clipDuration, SourceDuration: clipDuration}
		remaining := target - current
		if clipDuration >= remaining-durationEpsilon {
			segment.Duration = remaining
			reel.Segments = append(reel.Segments, segment)
			break
		}
		reel.Segments = append(reel.Segments, segment)
		current += clipDuration
	}

	c.logger.Info("background reel composed",
		logging.Int("segments", len(reel.Segments)),
		logging.Int("distinct_clips", len(durations)),
		logging.Bool("last_trimmed", reel.Segments[len(reel.Segments)-1].Trimmed()),
		logging.Seconds("duration", target),
	)
	return reel, nil
}

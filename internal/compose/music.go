package compose

import (
	"context"
	"math"
	"path/filepath"

	"storyreel/internal/logging"
	"storyreel/internal/media/tags"
	"storyreel/internal/services"
)

// Music describes a background track looped and trimmed to Duration.
type Music struct {
	// Name is the chosen file name as reported in the run manifest.
	Name           string
	Path           string
	Duration       float64
	SourceDuration float64
	Volume         float64
	Tags           tags.Track
}

// Loops reports how many passes over the source file are needed to cover
// Duration.
func (m Music) Loops() int {
	if m.SourceDuration <= 0 {
		return 1
	}
	return int(math.Ceil(m.Duration / m.SourceDuration))
}

// SelectMusic picks one file from dir uniformly at random and describes it
// looped to cover target seconds, hard-trimmed to exactly target, and scaled
// by volume. The volume is not clamped.
func (c *Composer) SelectMusic(ctx context.Context, dir string, target, volume float64) (Music, error) {
	if target <= 0 {
		return Music{}, services.Wrap(services.ErrValidation, "video", "select music", "target duration must be positive", nil)
	}
	files, err := ListAssets(dir)
	if err != nil {
		return Music{}, err
	}
	name := c.pick(files)
	path := filepath.Join(dir, name)

	sourceDuration, err := c.probe.Duration(ctx, path)
	if err != nil {
		return Music{}, services.Wrap(services.ErrIO, "video", "probe music", path, err)
	}

	music := Music{
		Name:           name,
		Path:           path,
		Duration:       target,
		SourceDuration: sourceDuration,
		Volume:         volume,
	}
	if track, err := tags.Read(path); err == nil {
		music.Tags = track
	}

	attrs := []logging.Attr{
		logging.String("file", name),
		logging.Seconds("source_duration", sourceDuration),
		logging.Int("loops", music.Loops()),
		logging.Float64("volume", volume),
	}
	if label := music.Tags.Label(); label != "" {
		attrs = append(attrs, logging.String("track", label))
	}
	c.logger.Info("background music selected", logging.Args(attrs...)...)
	return music, nil
}

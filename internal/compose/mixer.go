package compose

import (
	"fmt"

	"storyreel/internal/services"
)

// Mix overlays narration on the background music. The mix spans the music
// duration; narration plays once from zero and is silent after
// NarrationEnd.
type Mix struct {
	Music        Music
	Narration    *Narration
	Duration     float64
	NarrationEnd float64
}

// MixAudio pairs a target-length music handle with narration. The music must
// be at least as long as the narration.
func MixAudio(music Music, narration *Narration) (Mix, error) {
	if narration == nil {
		return Mix{}, services.Wrap(services.ErrValidation, "video", "mix audio", "narration required", nil)
	}
	if music.Duration+durationEpsilon < narration.Duration {
		return Mix{}, services.Wrap(services.ErrValidation, "video", "mix audio",
			fmt.Sprintf("music (%.2fs) shorter than narration (%.2fs)", music.Duration, narration.Duration), nil)
	}
	return Mix{
		Music:        music,
		Narration:    narration,
		Duration:     music.Duration,
		NarrationEnd: narration.Duration,
	}, nil
}

package compose

import (
	"fmt"
	"path/filepath"
	"strings"

	"storyreel/internal/fileutil"
	"storyreel/internal/services"
)

// Manifest records the assets an episode render used.
type Manifest struct {
	MusicFile string
	Segments  []Segment
}

// NewManifest captures the music name and reel segments of a render.
func NewManifest(music Music, reel Reel) Manifest {
	segments := make([]Segment, len(reel.Segments))
	copy(segments, reel.Segments)
	return Manifest{MusicFile: music.Name, Segments: segments}
}

// FormatManifest renders m as the plain-text run manifest. Identical
// manifests always produce identical bytes.
func FormatManifest(m Manifest) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Background Music File: %s\n", m.MusicFile)
	b.WriteString("Background Videos Used:\n")
	for _, segment := range m.Segments {
		name := segment.File
		if name == "" {
			name = filepath.Base(segment.Path)
		}
		fmt.Fprintf(&b, "  - File: %s, Start Time: %.2fs, Duration: %.2fs\n", name, segment.Start, segment.Duration)
	}
	return []byte(b.String())
}

// WriteManifest writes the formatted manifest to path atomically.
func WriteManifest(path string, m Manifest) error {
	if err := fileutil.WriteFileAtomic(path, FormatManifest(m), 0o644); err != nil {
		return services.Wrap(services.ErrIO, "video", "write manifest", path, err)
	}
	return nil
}

package tags

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// Track holds the descriptive tags embedded in a music file.
type Track struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Format string
}

// Empty reports whether no descriptive tags were found.
func (t Track) Empty() bool {
	return t.Title == "" && t.Artist == "" && t.Album == ""
}

// Label returns "Artist - Title", falling back to whichever part exists.
func (t Track) Label() string {
	switch {
	case t.Artist != "" && t.Title != "":
		return t.Artist + " - " + t.Title
	case t.Title != "":
		return t.Title
	default:
		return t.Artist
	}
}

// Read extracts ID3, MP4, FLAC or OGG tags from the file at path.
func Read(path string) (Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return Track{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return Track{}, fmt.Errorf("read tags from %s: %w", path, err)
	}
	return Track{
		Title:  strings.TrimSpace(metadata.Title()),
		Artist: strings.TrimSpace(metadata.Artist()),
		Album:  strings.TrimSpace(metadata.Album()),
		Genre:  strings.TrimSpace(metadata.Genre()),
		Format: string(metadata.Format()),
	}, nil
}

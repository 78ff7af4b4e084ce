package tags

import (
	"os"
	"path/filepath"
	"testing"
)

// id3v1 builds a 128-byte ID3v1 trailer.
func id3v1(title, artist, album string) []byte {
	buf := make([]byte, 128)
	copy(buf[0:3], "TAG")
	copy(buf[3:33], title)
	copy(buf[33:63], artist)
	copy(buf[63:93], album)
	copy(buf[93:97], "2024")
	buf[127] = 255
	return buf
}

func TestReadID3v1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calm.mp3")
	data := append(make([]byte, 256), id3v1("Calm Waters", "Lo Fi Band", "Chill")...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	track, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if track.Title != "Calm Waters" || track.Artist != "Lo Fi Band" || track.Album != "Chill" {
		t.Fatalf("unexpected tags: %+v", track)
	}
	if track.Label() != "Lo Fi Band - Calm Waters" {
		t.Fatalf("unexpected label %q", track.Label())
	}
}

func TestReadUntaggedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.mp3")
	if err := os.WriteFile(path, make([]byte, 512), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Read(path); err == nil {
		t.Fatal("expected error for untagged file")
	}
}

func TestTrackLabelFallbacks(t *testing.T) {
	if got := (Track{Title: "Only"}).Label(); got != "Only" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := (Track{Artist: "Solo"}).Label(); got != "Solo" {
		t.Fatalf("unexpected label %q", got)
	}
	if !(Track{}).Empty() {
		t.Fatal("zero track should be empty")
	}
}

package episode

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"

	"storyreel/internal/services"
)

// Artifact file names inside an episode directory.
const (
	ScriptFile    = "script.txt"
	AudioFile     = "audio.mp3"
	VideoFile     = "video.mp4"
	CaptionedFile = "video_with_subs.mp4"
	ManifestFile  = "video_info.txt"

	lockFile = ".storyreel.lock"
)

// Episode is a numbered episode rooted in a directory.
type Episode struct {
	Number int
	Dir    string
}

// New resolves episode number under root. Numbers start at 1.
func New(root string, number int) (Episode, error) {
	if number <= 0 {
		return Episode{}, services.Wrap(services.ErrValidation, "episode", "resolve",
			fmt.Sprintf("episode number must be positive, got %d", number), nil)
	}
	return Episode{Number: number, Dir: filepath.Join(root, strconv.Itoa(number))}, nil
}

func (e Episode) ScriptPath() string    { return filepath.Join(e.Dir, ScriptFile) }
func (e Episode) AudioPath() string     { return filepath.Join(e.Dir, AudioFile) }
func (e Episode) VideoPath() string     { return filepath.Join(e.Dir, VideoFile) }
func (e Episode) CaptionedPath() string { return filepath.Join(e.Dir, CaptionedFile) }
func (e Episode) ManifestPath() string  { return filepath.Join(e.Dir, ManifestFile) }

// Ensure creates the episode directory if needed.
func (e Episode) Ensure() error {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return services.Wrap(services.ErrIO, "episode", "create directory", e.Dir, err)
	}
	return nil
}

// Lock is a held episode lock.
type Lock struct {
	lock *flock.Flock
}

// Lock takes an exclusive, non-blocking lock on the episode directory. A
// lock held by another process is reported as ErrValidation.
func (e Episode) Lock() (*Lock, error) {
	if err := e.Ensure(); err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(e.Dir, lockFile))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "episode", "lock", e.Dir, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "episode", "lock",
			fmt.Sprintf("episode %d is being processed by another storyreel run", e.Number), nil)
	}
	return &Lock{lock: fl}, nil
}

// Release unlocks and removes the lock file. Safe on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	path := l.lock.Path()
	if err := l.lock.Unlock(); err != nil {
		return err
	}
	l.lock = nil
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Artifact describes one expected output file.
type Artifact struct {
	Name   string
	Path   string
	Exists bool
	Size   int64
}

// Artifacts reports the expected outputs in write order.
func (e Episode) Artifacts() []Artifact {
	names := []string{ScriptFile, AudioFile, VideoFile, CaptionedFile, ManifestFile}
	out := make([]Artifact, 0, len(names))
	for _, name := range names {
		artifact := Artifact{Name: name, Path: filepath.Join(e.Dir, name)}
		if info, err := os.Stat(artifact.Path); err == nil && info.Mode().IsRegular() {
			artifact.Exists = true
			artifact.Size = info.Size()
		}
		out = append(out, artifact)
	}
	return out
}

package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"storyreel/internal/compose"
	"storyreel/internal/logging"
)

// ScratchPrefix is the name prefix of every scratch file or directory
// storyreel creates in the temp directory.
const ScratchPrefix = "storyreel-"

// CleanResult contains the outcome of a cleanup operation.
type CleanResult struct {
	Removed []Entry
	Errors  []CleanupError
}

// Reclaimed sums the size of removed entries.
func (r CleanResult) Reclaimed() int64 {
	var total int64
	for _, e := range r.Removed {
		total += e.Size
	}
	return total
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// Entry describes one scratch file or directory.
type Entry struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
	IsDir   bool
}

// ResolveTempDir returns dir, or the system temp directory when dir is empty.
func ResolveTempDir(dir string) string {
	if dir = strings.TrimSpace(dir); dir != "" {
		return dir
	}
	return os.TempDir()
}

// ListScratch returns the storyreel scratch entries in tempDir.
func ListScratch(tempDir string) ([]Entry, error) {
	entries, err := os.ReadDir(ResolveTempDir(tempDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Entry
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), ScratchPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(ResolveTempDir(tempDir), entry.Name())
		size := info.Size()
		if entry.IsDir() {
			size, _ = dirSize(path)
		}
		out = append(out, Entry{
			Name:    entry.Name(),
			Path:    path,
			ModTime: info.ModTime(),
			Size:    size,
			IsDir:   entry.IsDir(),
		})
	}
	return out, nil
}

// CleanStale removes scratch entries in tempDir older than maxAge. With
// dryRun set, entries are reported but left in place.
func CleanStale(ctx context.Context, tempDir string, maxAge time.Duration, dryRun bool, logger *slog.Logger) CleanResult {
	result := CleanResult{}

	entries, err := ListScratch(tempDir)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: ResolveTempDir(tempDir), Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.ModTime.Before(cutoff) {
			continue
		}
		removeEntry(&result, entry, dryRun, logger, "removed stale scratch entry")
	}
	return result
}

// CleanEpisodeLeftovers removes speed-adjusted narration copies and
// interrupted atomic writes from episode directories under episodesDir.
// Finished outputs are never touched.
func CleanEpisodeLeftovers(ctx context.Context, episodesDir string, maxAge time.Duration, dryRun bool, logger *slog.Logger) CleanResult {
	result := CleanResult{}

	episodesDir = strings.TrimSpace(episodesDir)
	if episodesDir == "" {
		return result
	}
	dirs, err := os.ReadDir(episodesDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: episodesDir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, dir := range dirs {
		if ctx.Err() != nil {
			break
		}
		if !dir.IsDir() {
			continue
		}
		episodeDir := filepath.Join(episodesDir, dir.Name())
		files, err := os.ReadDir(episodeDir)
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: episodeDir, Error: err})
			continue
		}
		for _, file := range files {
			if file.IsDir() || !isEpisodeLeftover(file.Name()) {
				continue
			}
			info, err := file.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			entry := Entry{
				Name:    filepath.Join(dir.Name(), file.Name()),
				Path:    filepath.Join(episodeDir, file.Name()),
				ModTime: info.ModTime(),
				Size:    info.Size(),
			}
			removeEntry(&result, entry, dryRun, logger, "removed episode leftover")
		}
	}
	return result
}

func isEpisodeLeftover(name string) bool {
	if name == compose.SpeedTempName {
		return true
	}
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".tmp")
}

func removeEntry(result *CleanResult, entry Entry, dryRun bool, logger *slog.Logger, msg string) {
	if dryRun {
		result.Removed = append(result.Removed, entry)
		return
	}
	if err := os.RemoveAll(entry.Path); err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: entry.Path, Error: err})
		if logger != nil {
			logger.Warn("failed to remove scratch entry",
				logging.String("path", entry.Path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "scratch_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "check temp_dir permissions"),
			)
		}
		return
	}
	result.Removed = append(result.Removed, entry)
	if logger != nil {
		logger.Info(msg,
			logging.String("path", entry.Path),
			logging.Duration("age", time.Since(entry.ModTime)),
			logging.Int64("size_bytes", entry.Size),
			logging.String(logging.FieldEventType, "scratch_cleanup"),
		)
	}
}

// dirSize calculates the total size of a directory recursively.
func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best effort
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

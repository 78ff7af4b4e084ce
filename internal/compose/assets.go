package compose

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"storyreel/internal/services"
)

// ListAssets returns the regular files in dir, sorted by name. Hidden files
// are skipped. An empty or missing directory is ErrNoAssets.
func ListAssets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNoAssets, "video", "list assets", "directory "+dir+" does not exist", err)
		}
		return nil, services.Wrap(services.ErrIO, "video", "list assets", dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !entry.Type().IsRegular() {
			// Follow symlinks to regular files.
			info, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		files = append(files, entry.Name())
	}
	if len(files) == 0 {
		return nil, services.Wrap(services.ErrNoAssets, "video", "list assets", "no files found in "+dir, nil)
	}
	return files, nil
}

func (c *Composer) pick(files []string) string {
	return files[c.chooser.IntN(len(files))]
}

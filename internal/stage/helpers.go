package stage

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"storyreel/internal/services"
)

// RequireFile confirms that an upstream artifact exists. A missing file is
// reported as services.ErrNotFound naming the stage that produces it.
func RequireFile(stage, path, producer string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, stage, "read input",
				path+" not found; run the "+producer+" stage first", err)
		}
		return services.Wrap(services.ErrIO, stage, "read input", path, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, stage, "read input", path+" is a directory", nil)
	}
	return nil
}

// ReadText reads an upstream text artifact via RequireFile. Empty content
// is ErrValidation.
func ReadText(stage, path, producer string) (string, error) {
	if err := RequireFile(stage, path, producer); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrIO, stage, "read input", path, err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", services.Wrap(services.ErrValidation, stage, "read input", path+" is empty", nil)
	}
	return text, nil
}

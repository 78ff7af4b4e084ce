package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and reports failure with its output.
type Runner func(ctx context.Context, name string, args ...string) error

// maxErrorOutput caps how much tool output is carried in errors.
const maxErrorOutput = 2048

// Exec runs name with args and returns an error carrying the tail of the
// combined output on failure.
func Exec(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, tail(strings.TrimSpace(string(output)), maxErrorOutput))
	}
	return nil
}

func tail(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return "..." + s[len(s)-limit:]
}

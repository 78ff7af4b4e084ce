package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// MediaRequirements lists the external tools the video stage invokes.
func MediaRequirements(ffmpegBinary, ffprobeBinary string) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpegBinary, Description: "Required for rendering, speed adjustment and audio extraction"},
		{Name: "FFprobe", Command: ffprobeBinary, Description: "Required for media durations"},
		{Name: "uvx", Command: "uvx", Description: "Required for WhisperX-driven transcription"},
	}
}

// OutputRunner executes a command and returns its output.
type OutputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// CheckFFmpegFilter reports whether the ffmpeg build provides filter. The
// caption pass needs "ass", which is only present when ffmpeg is built with
// libass. A nil run uses exec.
func CheckFFmpegFilter(ctx context.Context, ffmpegBinary, filter string, run OutputRunner) Status {
	status := Status{
		Name:        "FFmpeg " + filter + " filter",
		Command:     ffmpegBinary,
		Description: "Required to burn captions into the final render",
	}
	if run == nil {
		run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output() //nolint:gosec
		}
	}
	output, err := run(ctx, ffmpegBinary, "-hide_banner", "-filters")
	if err != nil {
		status.Detail = fmt.Sprintf("list filters: %v", err)
		return status
	}
	for _, line := range strings.Split(string(output), "\n") {
		fields := strings.Fields(line)
		// " ... ass               V->V       Render ASS subtitles ..."
		if len(fields) >= 2 && fields[1] == filter {
			status.Available = true
			return status
		}
	}
	status.Detail = fmt.Sprintf("ffmpeg build lacks the %q filter (rebuild with libass)", filter)
	return status
}

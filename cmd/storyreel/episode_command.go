package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"storyreel/internal/pipeline"
	"storyreel/internal/services"
)

type stageFlags struct {
	skipScript bool
	skipAudio  bool
	skipVideo  bool
}

func (f *stageFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.skipScript, "skip-script", false, "Skip script generation")
	cmd.Flags().BoolVar(&f.skipAudio, "skip-audio", false, "Skip narration synthesis")
	cmd.Flags().BoolVar(&f.skipVideo, "skip-video", false, "Skip video composition")
}

func (f *stageFlags) options() pipeline.Options {
	return pipeline.Options{SkipScript: f.skipScript, SkipAudio: f.skipAudio, SkipVideo: f.skipVideo}
}

func newEpisodeCommand(ctx *commandContext) *cobra.Command {
	var flags stageFlags

	cmd := &cobra.Command{
		Use:   "episode <N>",
		Short: "Generate a single episode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseEpisodeArg(args[0])
			if err != nil {
				return err
			}
			p, closeFn, err := ctx.openPipeline()
			if err != nil {
				return err
			}
			defer closeFn()

			result := p.ProcessEpisode(cmd.Context(), number, flags.options())
			printResult(cmd.OutOrStdout(), result)
			if !result.Succeeded() {
				return episodeError(result)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func printResult(out io.Writer, result pipeline.Result) {
	if result.Succeeded() {
		fmt.Fprintf(out, "Episode %d completed in %s\n", result.Episode, result.Elapsed().Round(time.Second))
		return
	}
	fmt.Fprintf(out, "Episode %d failed: %s\n", result.Episode, failureText(result))
}

func failureText(result pipeline.Result) string {
	stage := strings.TrimSpace(result.FailedStage)
	message := ""
	if result.Err != nil {
		message = strings.TrimSpace(result.Err.Error())
	}
	if stage == "" {
		return message
	}
	return fmt.Sprintf("%s stage (%s): %s", stage, services.Kind(result.Err), message)
}

func episodeError(result pipeline.Result) error {
	return fmt.Errorf("episode %d failed: %w", result.Episode, result.Err)
}

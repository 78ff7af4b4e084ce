package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"storyreel/internal/pipeline"
	"storyreel/internal/staging"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var flags stageFlags

	cmd := &cobra.Command{
		Use:   "batch <START> <END>",
		Short: "Generate a contiguous range of episodes",
		Long: "Generate episodes START through END inclusive, one at a time. A failed\n" +
			"episode is reported and the batch continues with the next number.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseEpisodeArg(args[0])
			if err != nil {
				return err
			}
			end, err := parseEpisodeArg(args[1])
			if err != nil {
				return err
			}
			if end < start {
				return fmt.Errorf("END (%d) must not be less than START (%d)", end, start)
			}

			p, closeFn, err := ctx.openPipeline()
			if err != nil {
				return err
			}
			defer closeFn()
			ctx.reclaimScratch(cmd)

			out := cmd.OutOrStdout()
			progress, finish := newBatchProgress(cmd.ErrOrStderr(), out, end-start+1)
			summary, err := p.RunBatch(cmd.Context(), start, end, flags.options(), progress)
			finish()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, renderBatchSummary(summary))
			if summary.Interrupted {
				return fmt.Errorf("batch interrupted after %d of %d episodes", summary.Total(), end-start+1)
			}
			if len(summary.Failed) > 0 {
				return fmt.Errorf("%d of %d episodes failed: %s", len(summary.Failed), summary.Total(), joinInts(summary.Failed))
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// newBatchProgress shows a progress bar on a terminal and one line per
// episode otherwise.
func newBatchProgress(barOut, lineOut io.Writer, total int) (func(pipeline.Result), func()) {
	if !isTerminal(barOut) {
		return func(result pipeline.Result) { printResult(lineOut, result) }, func() {}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(barOut),
		progressbar.OptionSetDescription("episodes"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
	progress := func(result pipeline.Result) {
		bar.Describe(fmt.Sprintf("episode %d", result.Episode))
		_ = bar.Add(1)
	}
	return progress, func() { _ = bar.Finish() }
}

func renderBatchSummary(summary pipeline.Summary) string {
	rows := make([][]string, 0, len(summary.Results))
	for _, result := range summary.Results {
		detail := ""
		if !result.Succeeded() {
			detail = failureText(result)
		}
		rows = append(rows, []string{
			strconv.Itoa(result.Episode),
			string(result.Status),
			result.Elapsed().Round(time.Second).String(),
			truncate(detail, 80),
		})
	}
	footer := []string{
		"",
		fmt.Sprintf("%d ok / %d failed", len(summary.Successful), len(summary.Failed)),
	}
	return renderTable(
		[]string{"Episode", "Status", "Elapsed", "Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
		footer...,
	)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}

// reclaimScratch removes day-old scratch files before a long batch.
func (c *commandContext) reclaimScratch(cmd *cobra.Command) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return
	}
	staging.CleanStale(cmd.Context(), cfg.Paths.TempDir, staleScratchAge, false, logger)
}

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"storyreel/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var episodeFilter int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent episode runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), history.Filter{Episode: episodeFilter, Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistory(runs, time.Now()))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().IntVarP(&episodeFilter, "episode", "e", 0, "Only show runs for this episode")
	return cmd
}

func renderHistory(runs []history.Run, now time.Time) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		failure := ""
		if run.Status == history.StatusFailed {
			failure = truncate(fmt.Sprintf("%s: %s", run.FailedStage, run.ErrorMessage), 60)
		}
		rows = append(rows, []string{
			strconv.Itoa(run.Episode),
			string(run.Status),
			stageSummary(run.Stages),
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			run.Elapsed().Round(time.Second).String(),
			failure,
		})
	}
	return renderTable(
		[]string{"Episode", "Status", "Stages", "Started", "Elapsed", "Failure"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func stageSummary(stages []history.StageRecord) string {
	summary := ""
	for i, stage := range stages {
		if i > 0 {
			summary += " "
		}
		mark := "+"
		switch stage.Status {
		case history.StatusFailed:
			mark = "x"
		case history.StatusSkipped:
			mark = "-"
		}
		summary += mark + stage.Stage
	}
	return summary
}

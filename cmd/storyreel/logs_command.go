package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"storyreel/internal/logging"
	"storyreel/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var raw bool
	var filter logs.Filter

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the storyreel log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			out := cmd.OutOrStdout()
			emit := func(line string) { printLogLine(out, line, filter, raw) }

			// Filtering happens after the tail, so read generously.
			readLimit := lines
			if filter != (logs.Filter{}) {
				readLimit = lines * 20
			}
			tail, offset, err := logs.Last(path, readLimit)
			if err != nil {
				return err
			}
			matched := make([]string, 0, len(tail))
			for _, line := range tail {
				if rec, ok := logs.Parse(line); ok && !filter.Match(rec) {
					continue
				}
				matched = append(matched, line)
			}
			if len(matched) > lines {
				matched = matched[len(matched)-lines:]
			}
			for _, line := range matched {
				emit(line)
			}

			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, 500*time.Millisecond, emit)
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON records unformatted")
	cmd.Flags().IntVarP(&filter.Episode, "episode", "e", 0, "Only show records for this episode")
	cmd.Flags().StringVar(&filter.RunID, "run", "", "Only show records for this run id")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "Minimum level (debug, info, warn, error)")
	return cmd
}

func printLogLine(out io.Writer, line string, filter logs.Filter, raw bool) {
	rec, ok := logs.Parse(line)
	if !ok {
		fmt.Fprintln(out, line)
		return
	}
	if !filter.Match(rec) {
		return
	}
	if raw {
		fmt.Fprintln(out, line)
		return
	}
	fmt.Fprintln(out, rec.Format())
}

package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"storyreel/internal/staging"
)

// staleScratchAge is the age after which batch runs reclaim scratch files.
const staleScratchAge = 24 * time.Hour

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove scratch files left by interrupted runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			scratch := staging.CleanStale(cmd.Context(), cfg.Paths.TempDir, maxAge, dryRun, logger)
			leftovers := staging.CleanEpisodeLeftovers(cmd.Context(), cfg.Paths.EpisodesDir, maxAge, dryRun, logger)

			verb := "Removed"
			if dryRun {
				verb = "Would remove"
			}
			rows := make([][]string, 0, len(scratch.Removed)+len(leftovers.Removed))
			for _, entry := range append(scratch.Removed, leftovers.Removed...) {
				rows = append(rows, []string{entry.Path, humanize.Bytes(uint64(entry.Size)), humanize.Time(entry.ModTime)})
			}
			out := cmd.OutOrStdout()
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"Path", "Size", "Modified"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			}
			reclaimed := scratch.Reclaimed() + leftovers.Reclaimed()
			fmt.Fprintf(out, "%s %d entries (%s)\n", verb, len(rows), humanize.Bytes(uint64(reclaimed)))

			if failures := len(scratch.Errors) + len(leftovers.Errors); failures > 0 {
				return fmt.Errorf("%d entries could not be removed; see log for details", failures)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", staleScratchAge, "Only remove entries older than this")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List entries without removing them")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storyreel/internal/pipeline"
	"storyreel/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var flags stageFlags

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check binaries, directories and stage readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			stages := pipeline.New(cfg, logger, nil).Stages()
			opts := flags.options()
			results := preflight.RunAll(cmd.Context(), cfg, stages, preflight.Options{
				SkipScript: opts.SkipScript,
				SkipAudio:  opts.SkipAudio,
				SkipVideo:  opts.SkipVideo,
			})

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "ok"
				if !r.Passed {
					status = "FAIL"
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d preflight checks failed", len(failed))
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

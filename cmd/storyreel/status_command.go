package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"storyreel/internal/episode"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <N>",
		Short: "Show which outputs exist for an episode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseEpisodeArg(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ep, err := episode.New(cfg.Paths.EpisodesDir, number)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, 5)
			for _, artifact := range ep.Artifacts() {
				size := "-"
				if artifact.Exists {
					size = humanize.Bytes(uint64(artifact.Size))
				}
				rows = append(rows, []string{artifact.Name, yesNo(artifact.Exists), size})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Episode %d (%s)\n", ep.Number, ep.Dir)
			fmt.Fprintln(out, renderTable([]string{"File", "Present", "Size"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
}

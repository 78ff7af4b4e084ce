package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"storyreel/internal/story"
)

func newStoriesCommand(ctx *commandContext) *cobra.Command {
	storiesCmd := &cobra.Command{
		Use:   "stories",
		Short: "Inspect the story catalogue",
	}
	storiesCmd.AddCommand(newStoriesListCommand(ctx))
	storiesCmd.AddCommand(newStoriesCheckCommand(ctx))
	return storiesCmd
}

func loadCatalog(ctx *commandContext) (*story.Catalog, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return story.Load(cfg.Paths.StoriesFile)
}

func newStoriesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stories with their episode numbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, catalog.Len())
			for n := 1; n <= catalog.Len(); n++ {
				text, _ := catalog.Story(n)
				rows = append(rows, []string{
					strconv.Itoa(n),
					strconv.Itoa(catalog.Words(n)),
					truncate(strings.Join(strings.Fields(text), " "), 70),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Episode", "Words", "Story"}, rows,
				[]columnAlignment{alignRight, alignRight, alignLeft}))
			return nil
		},
	}
}

func newStoriesCheckCommand(ctx *commandContext) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report stories that look like duplicates",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			pairs := catalog.Duplicates(threshold)
			if len(pairs) == 0 {
				fmt.Fprintf(out, "%d stories, no near-duplicates at threshold %.2f\n", catalog.Len(), threshold)
				return nil
			}
			rows := make([][]string, 0, len(pairs))
			for _, pair := range pairs {
				rows = append(rows, []string{strconv.Itoa(pair.First), strconv.Itoa(pair.Second), fmt.Sprintf("%.2f", pair.Score)})
			}
			fmt.Fprintln(out, renderTable([]string{"Story", "Similar to", "Score"}, rows,
				[]columnAlignment{alignRight, alignRight, alignRight}))
			return fmt.Errorf("%d near-duplicate story pairs", len(pairs))
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0.8, "Similarity score (0-1) at which stories are reported")
	return cmd
}

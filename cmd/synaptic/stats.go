package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cocosberlucens/svcms-synaptic/cmd/synaptic/internal"
	"github.com/cocosberlucens/svcms-synaptic/internal/syncer"
)

var statsFlags struct {
	depth int
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics about SVCMS commits",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVarP(&statsFlags.depth, "depth", "d", 0, "Number of commits to inspect (default: from config)")
}

func runStats(cmd *cobra.Command, args []string) error {
	env, err := setupRun(cmd)
	if err != nil {
		return err
	}

	orchestrator := syncer.NewOrchestrator(env.source, env.cfg, env.logger)
	stats, err := orchestrator.Stats(cmd.Context(), syncer.Options{Depth: statsFlags.depth})
	if err != nil {
		return err
	}

	formatter := internal.NewFormatter(env.flags.GetOutputFormat(), cmd.OutOrStdout())
	if env.flags.GetOutputFormat() == internal.FormatJSON {
		return formatter.PrintJSON(stats)
	}

	theme := internal.DefaultTheme()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, theme.Title.Render("Synaptic SVCMS Statistics"))

	rows := [][]string{
		{"commits seen", fmt.Sprintf("%d", stats.CommitsSeen)},
		{"semantic commits", fmt.Sprintf("%d", stats.SemanticTotal)},
		{"with memories", fmt.Sprintf("%d", stats.WithMemory)},
		{"pure knowledge commits", fmt.Sprintf("%d", stats.EmptyTree)},
	}
	if err := formatter.PrintTable([]string{"metric", "count"}, rows); err != nil {
		return err
	}

	if len(stats.ByType) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, theme.Title.Render("Commit types"))

	// Sort by count descending, then name for determinism.
	type typeCount struct {
		name  string
		count int
	}
	counts := make([]typeCount, 0, len(stats.ByType))
	for name, count := range stats.ByType {
		counts = append(counts, typeCount{name, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].name < counts[j].name
	})

	typeRows := make([][]string, 0, len(counts))
	for _, tc := range counts {
		typeRows = append(typeRows, []string{tc.name, fmt.Sprintf("%d", tc.count)})
	}
	return formatter.PrintTable([]string{"type", "count"}, typeRows)
}

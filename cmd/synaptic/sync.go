package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cocosberlucens/svcms-synaptic/cmd/synaptic/internal"
	"github.com/cocosberlucens/svcms-synaptic/internal/obsidian"
	"github.com/cocosberlucens/svcms-synaptic/internal/syncer"
)

var syncFlags struct {
	depth  int
	since  string
	dryRun bool
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync commit memories to CLAUDE.md files",
	Long: `Traverses recent history, parses SVCMS commit messages, and merges
their Memory trailers into the CLAUDE.md files their scope (or Location
trailer) routes them to. Re-running is idempotent: entries are
deduplicated by commit hash.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().IntVarP(&syncFlags.depth, "depth", "d", 0, "Number of commits to process (default: from config)")
	syncCmd.Flags().StringVar(&syncFlags.since, "since", "", "Process commits since this date (YYYY-MM-DD)")
	syncCmd.Flags().BoolVar(&syncFlags.dryRun, "dry-run", false, "Preview changes without writing files")
}

func runSync(cmd *cobra.Command, args []string) error {
	env, err := setupRun(cmd)
	if err != nil {
		return err
	}

	var since time.Time
	if syncFlags.since != "" {
		since, err = time.ParseInLocation("2006-01-02", syncFlags.since, time.UTC)
		if err != nil {
			return internal.NewCLIError(internal.ExitError, "invalid --since value, expected YYYY-MM-DD")
		}
	}

	orchestrator := syncer.NewOrchestrator(env.source, env.cfg, env.logger)

	if env.cfg.Obsidian.VaultPath != "" {
		manager, err := obsidian.NewManager(env.cfg.Obsidian)
		if err != nil {
			env.warnings = append(env.warnings, fmt.Sprintf("obsidian sink disabled: %v", err))
		} else if !syncFlags.dryRun {
			orchestrator.Observer = manager
		}
	}

	report, err := orchestrator.Sync(cmd.Context(), syncer.Options{
		Depth:  syncFlags.depth,
		Since:  since,
		DryRun: syncFlags.dryRun,
	})
	if err != nil {
		return err
	}
	report.Warnings = append(env.warnings, report.Warnings...)

	formatter := internal.NewFormatter(env.flags.GetOutputFormat(), cmd.OutOrStdout())
	if env.flags.GetOutputFormat() == internal.FormatJSON {
		if err := formatter.PrintJSON(report); err != nil {
			return err
		}
	} else if err := renderSyncReport(cmd, formatter, report); err != nil {
		return err
	}

	if report.HasErrors() {
		return internal.NewCLIError(internal.ExitError,
			fmt.Sprintf("sync completed with %d error(s)", len(report.Errors)))
	}
	return nil
}

func renderSyncReport(cmd *cobra.Command, formatter internal.Formatter, report *syncer.SyncReport) error {
	theme := internal.DefaultTheme()
	out := cmd.OutOrStdout()

	title := "Synaptic Memory Sync"
	if report.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintln(out, theme.Title.Render(title))

	rows := [][]string{
		{"commits seen", fmt.Sprintf("%d", report.CommitsSeen)},
		{"semantic commits", fmt.Sprintf("%d", report.CommitsParsed)},
		{"memories extracted", fmt.Sprintf("%d", report.MemoriesExtracted)},
		{"files created", fmt.Sprintf("%d", report.FilesCreated)},
		{"files updated", fmt.Sprintf("%d", report.FilesUpdated)},
		{"entries added", fmt.Sprintf("%d", report.EntriesAdded)},
		{"duplicates skipped", fmt.Sprintf("%d", report.EntriesSkippedDuplicate)},
	}
	if err := formatter.PrintTable([]string{"metric", "count"}, rows); err != nil {
		return err
	}

	for _, warning := range report.Warnings {
		if err := formatter.PrintWarning(warning); err != nil {
			return err
		}
	}
	for _, e := range report.Errors {
		if err := formatter.PrintError(e); err != nil {
			return err
		}
	}

	for _, preview := range report.Previews {
		fmt.Fprintln(out)
		fmt.Fprintln(out, theme.Dim.Render("--- "+preview.Path))
		fmt.Fprint(out, preview.Diff)
	}

	if !report.DryRun && len(report.Errors) == 0 {
		return formatter.PrintSuccess("sync complete")
	}
	return nil
}

package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cocosberlucens/svcms-synaptic/internal/config"
	"github.com/cocosberlucens/svcms-synaptic/internal/gitlog"
	"github.com/cocosberlucens/svcms-synaptic/internal/memory"
	"github.com/cocosberlucens/svcms-synaptic/internal/svcms"
	"github.com/cocosberlucens/svcms-synaptic/internal/util"
)

// Options parameterise one sync run.
type Options struct {
	// Depth is the number of commits to traverse; 0 falls back to the
	// configured default depth.
	Depth int

	// Since bounds the traversal by author date; zero means unbounded.
	Since time.Time

	// DryRun computes everything but writes nothing; pending changes are
	// attached to the report as unified-diff previews.
	DryRun bool
}

// Orchestrator composes the pipeline: history traversal, grammar parsing,
// memory extraction, routing, and per-target reconciliation. Targets are
// reconciled serially, which guarantees exactly one live reconciliation
// per path.
type Orchestrator struct {
	Source   gitlog.HistorySource
	Config   *config.EffectiveConfig
	Logger   *slog.Logger
	Observer Observer
}

// NewOrchestrator wires an orchestrator over the given history source and
// effective configuration.
func NewOrchestrator(source gitlog.HistorySource, cfg *config.EffectiveConfig, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{Source: source, Config: cfg, Logger: logger}
}

// Sync runs the pipeline once and returns the aggregated report. Per-file
// failures are recorded in the report's Errors and do not abort the run;
// only history-source failure does.
func (o *Orchestrator) Sync(ctx context.Context, opts Options) (*SyncReport, error) {
	report := &SyncReport{
		RunID:  uuid.NewString(),
		DryRun: opts.DryRun,
	}

	depth := opts.Depth
	if depth <= 0 {
		depth = o.Config.DefaultDepth
	}

	commits, err := o.Source.Walk(ctx, depth, opts.Since)
	if err != nil {
		return nil, fmt.Errorf("history traversal failed: %w", err)
	}
	report.CommitsSeen = len(commits)

	parser := svcms.NewParser(o.Config)
	var parsed []*svcms.SemanticCommit
	for _, raw := range commits {
		commit, warnings := parser.Parse(raw)
		report.Warnings = append(report.Warnings, warnings...)
		if commit != nil {
			parsed = append(parsed, commit)
		}
	}
	report.CommitsParsed = len(parsed)

	memories := memory.Extract(parsed, o.Config)
	report.MemoriesExtracted = len(memories)

	o.Logger.Debug("pipeline stages complete",
		"commits_seen", report.CommitsSeen,
		"commits_parsed", report.CommitsParsed,
		"memories_extracted", report.MemoriesExtracted)

	groups := groupByTarget(memories)

	repoRoot, err := o.Source.RepoRoot(ctx)
	if err != nil && len(groups) > 0 {
		return nil, fmt.Errorf("failed to locate repository root: %w", err)
	}

	reconciler := &memory.Reconciler{EntryCap: o.Config.PerFileEntryCap}

	// Deterministic target order.
	targets := make([]string, 0, len(groups))
	for target := range groups {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	for _, target := range targets {
		entries := groups[target]

		absPath, err := resolveTarget(repoRoot, target)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", target, err))
			continue
		}

		outcome, err := reconciler.Reconcile(absPath, target, entries, opts.DryRun)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", target, err))
			continue
		}

		report.Warnings = append(report.Warnings, outcome.Warnings...)
		report.EntriesAdded += outcome.EntriesAdded
		report.EntriesSkippedDuplicate += outcome.DuplicatesSkipped
		if outcome.Changed() {
			if outcome.Created {
				report.FilesCreated++
			} else {
				report.FilesUpdated++
			}
			o.Logger.Info("reconciled target",
				"path", target,
				"entries_added", outcome.EntriesAdded,
				"duplicates_skipped", outcome.DuplicatesSkipped,
				"dry_run", opts.DryRun)
		}

		if opts.DryRun && outcome.Changed() {
			diff, err := unifiedDiff(target, outcome.OldContent, outcome.NewContent)
			if err != nil {
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s: preview failed: %v", target, err))
			} else {
				report.Previews = append(report.Previews, FilePreview{Path: target, Diff: diff})
			}
		}

		if o.Observer != nil {
			if err := o.Observer.ObserveTarget(ctx, target, entries); err != nil {
				report.Warnings = append(report.Warnings, fmt.Sprintf("observer: %s: %v", target, err))
			}
		}
	}

	return report, nil
}

// Stats traverses history and summarises the semantic commits found,
// without touching any memory file.
func (o *Orchestrator) Stats(ctx context.Context, opts Options) (*StatsReport, error) {
	depth := opts.Depth
	if depth <= 0 {
		depth = o.Config.DefaultDepth
	}

	commits, err := o.Source.Walk(ctx, depth, opts.Since)
	if err != nil {
		return nil, fmt.Errorf("history traversal failed: %w", err)
	}

	stats := &StatsReport{
		CommitsSeen: len(commits),
		ByType:      make(map[string]int),
	}

	parser := svcms.NewParser(o.Config)
	for _, raw := range commits {
		commit, _ := parser.Parse(raw)
		if commit == nil {
			continue
		}
		stats.SemanticTotal++
		stats.ByType[commit.Type]++
		if commit.HasMemory() {
			stats.WithMemory++
		}
		if commit.IsEmptyTree {
			stats.EmptyTree++
		}
	}

	return stats, nil
}

// groupByTarget buckets memories by target path, each bucket sorted
// ascending by author date. The walk yields newest-first, so within a
// bucket the stable sort reverses into chronological order while keeping
// equal-date commits in a deterministic relative order.
func groupByTarget(memories []memory.EnrichedMemory) map[string][]memory.EnrichedMemory {
	groups := make(map[string][]memory.EnrichedMemory)
	for _, m := range memories {
		groups[m.TargetPath] = append(groups[m.TargetPath], m)
	}
	for _, entries := range groups {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Date.Before(entries[j].Date)
		})
	}
	return groups
}

// resolveTarget turns a router path into an absolute filesystem path.
// Router paths are repository-relative except for ~-prefixed explicit
// locations, which resolve against the user home.
func resolveTarget(repoRoot, target string) (string, error) {
	if strings.HasPrefix(target, "~") {
		return util.ExpandPath(target)
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target), nil
	}
	return filepath.Join(repoRoot, target), nil
}

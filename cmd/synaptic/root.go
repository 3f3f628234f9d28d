package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cocosberlucens/svcms-synaptic/cmd/synaptic/internal"
	"github.com/cocosberlucens/svcms-synaptic/internal/config"
	"github.com/cocosberlucens/svcms-synaptic/internal/gitlog"
	"github.com/cocosberlucens/svcms-synaptic/internal/observability"
)

const version = "v0.2.0"

var rootCmd = &cobra.Command{
	Use:   "synaptic",
	Short: "Transform Git commits into Claude Code memories using SVCMS",
	Long: `Synaptic mines your Git history for commits written in the Semantic
Versioned Commit Message Specification (SVCMS), extracts the knowledge
encoded in their trailers, and merges it into per-directory CLAUDE.md
memory files across the working tree.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Synaptic " + version)
	},
}

// runEnvironment bundles what every pipeline command needs: the resolved
// configuration, the repository's history source, and a logger.
type runEnvironment struct {
	flags    *GlobalFlags
	cfg      *config.EffectiveConfig
	warnings []string
	source   *gitlog.ExecHistorySource
	repoRoot string
	logger   *slog.Logger
}

// setupRun locates the repository, loads both configuration documents and
// builds the process logger.
func setupRun(cmd *cobra.Command) (*runEnvironment, error) {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return nil, err
	}

	source := gitlog.NewExecHistorySource(flags.RepoDir)
	repoRoot, err := source.RepoRoot(cmd.Context())
	if err != nil {
		return nil, internal.WrapError(internal.ExitRepoError, "not inside a git repository", err)
	}

	globalPath := flags.ConfigFile
	if globalPath == "" {
		globalPath = config.DefaultGlobalConfigPath()
	}

	loader := config.NewLoader(config.NewValidator())
	cfg, warnings, err := loader.LoadEffective(globalPath, config.ProjectConfigPath(repoRoot))
	if err != nil {
		return nil, internal.WrapError(internal.ExitConfigError, "failed to load configuration", err)
	}

	level := cfg.Logging.Level
	if flags.IsVerbose() {
		level = "debug"
	}
	var logWriter io.Writer = os.Stderr
	if flags.IsQuiet() {
		logWriter = io.Discard
	}
	logger := observability.NewLogger(logWriter, level, cfg.Logging.Format)

	return &runEnvironment{
		flags:    flags,
		cfg:      cfg,
		warnings: warnings,
		source:   source,
		repoRoot: repoRoot,
		logger:   logger,
	}, nil
}

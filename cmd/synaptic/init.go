package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cocosberlucens/svcms-synaptic/cmd/synaptic/internal"
	"github.com/cocosberlucens/svcms-synaptic/internal/config"
	"github.com/cocosberlucens/svcms-synaptic/internal/gitlog"
	"github.com/cocosberlucens/svcms-synaptic/internal/util"
)

var initFlags struct {
	global bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize Synaptic configuration",
	Long: `Writes a starter configuration document. By default the project
document (.synaptic/config.yaml at the repository root) is created;
--global writes the per-user document instead. Existing files are never
overwritten.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initFlags.global, "global", false, "Write the per-user global config instead of the project config")
}

func runInit(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}
	formatter := internal.NewFormatter(flags.GetOutputFormat(), cmd.OutOrStdout())

	var path string
	var doc *config.FileConfig
	if initFlags.global {
		path = flags.ConfigFile
		if path == "" {
			path = config.DefaultGlobalConfigPath()
		}
		doc = config.DefaultFileConfig()
	} else {
		source := gitlog.NewExecHistorySource(flags.RepoDir)
		repoRoot, err := source.RepoRoot(cmd.Context())
		if err != nil {
			return internal.WrapError(internal.ExitRepoError, "not inside a git repository", err)
		}
		path = config.ProjectConfigPath(repoRoot)
		doc = config.DefaultProjectFileConfig()
	}

	if _, err := os.Stat(path); err == nil {
		return internal.NewCLIError(internal.ExitError,
			fmt.Sprintf("config already exists at %s", path))
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := util.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := formatter.PrintSuccess("created " + path); err != nil {
		return err
	}
	if !initFlags.global {
		fmt.Fprintln(cmd.OutOrStdout(), "Edit", filepath.ToSlash(path), "to declare your project scopes and locations.")
	}
	return nil
}

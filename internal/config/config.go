package config

import (
	"os"
	"path/filepath"
)

// FileConfig is the schema shared by the global (~/.synaptic/config.yaml)
// and project (<repo>/.synaptic/config.yaml) configuration documents.
// All fields are optional; pointer scalars distinguish "absent" from "zero"
// so the project document only overrides what it actually sets.
type FileConfig struct {
	Sync              SyncSection        `mapstructure:"sync" yaml:"sync,omitempty"`
	Logging           LoggingSection     `mapstructure:"logging" yaml:"logging,omitempty"`
	CommitTypes       CommitTypesSection `mapstructure:"commit_types" yaml:"commit_types,omitempty"`
	ProjectWideScopes []string           `mapstructure:"project_wide_scopes" yaml:"project_wide_scopes,omitempty"`
	Locations         map[string]string  `mapstructure:"locations" yaml:"locations,omitempty"`
	Obsidian          ObsidianSection    `mapstructure:"obsidian" yaml:"obsidian,omitempty"`
}

// SyncSection contains sync traversal settings.
type SyncSection struct {
	DefaultDepth    *int `mapstructure:"default_depth" yaml:"default_depth,omitempty" validate:"omitempty,min=0"`
	PerFileEntryCap *int `mapstructure:"per_file_entry_cap" yaml:"per_file_entry_cap,omitempty" validate:"omitempty,min=1"`
}

// LoggingSection contains logging configuration.
type LoggingSection struct {
	Level  string `mapstructure:"level" yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format,omitempty" validate:"omitempty,oneof=text json"`
}

// CommitTypesSection configures the commit grammar: extra recognised types,
// alias spellings, the two-tier category table and the per-scope matrix.
type CommitTypesSection struct {
	Additional []string                   `mapstructure:"additional" yaml:"additional,omitempty"`
	Aliases    map[string]string          `mapstructure:"aliases" yaml:"aliases,omitempty"`
	Categories map[string]CategorySection `mapstructure:"categories" yaml:"categories,omitempty"`
	Scopes     map[string]ScopeSection    `mapstructure:"scopes" yaml:"scopes,omitempty"`
}

// CategorySection declares one commit-type category and its admissible types.
type CategorySection struct {
	Description string   `mapstructure:"description" yaml:"description,omitempty"`
	Types       []string `mapstructure:"types" yaml:"types"`
}

// ScopeSection declares which categories (or the wildcard "all") a scope
// admits, plus scope-local custom types.
type ScopeSection struct {
	Categories  []string `mapstructure:"categories" yaml:"categories"`
	CustomTypes []string `mapstructure:"custom_types" yaml:"custom_types,omitempty"`
}

// ObsidianSection configures the optional Obsidian rendering sink.
// The sink is enabled only when VaultPath is non-empty.
type ObsidianSection struct {
	VaultPath   string `mapstructure:"vault_path" yaml:"vault_path,omitempty"`
	Folder      string `mapstructure:"folder" yaml:"folder,omitempty"`
	ProjectName string `mapstructure:"project_name" yaml:"project_name,omitempty"`
}

// ScopeRule is the resolved form of a scope_matrix entry.
type ScopeRule struct {
	// AllCategories is set when the rule lists the wildcard "all".
	AllCategories bool
	Categories    map[string]struct{}
	CustomTypes   map[string]struct{}
}

// EffectiveConfig is the frozen result of merging the built-in defaults with
// the global and project documents. It is constructed once per run by
// Resolve and shared read-only by every pipeline stage.
type EffectiveConfig struct {
	RecognisedTypes   map[string]struct{}
	TypeAliases       map[string]string
	Categories        map[string]map[string]struct{}
	ScopeMatrix       map[string]ScopeRule
	ExplicitLocations map[string]string
	ProjectWideScopes map[string]struct{}
	DefaultDepth      int
	// PerFileEntryCap is 0 when no cap is configured.
	PerFileEntryCap int
	Logging         LoggingSection
	Obsidian        ObsidianSection
}

// CanonicalType resolves alias spellings to their canonical type identifier.
func (c *EffectiveConfig) CanonicalType(t string) string {
	if canonical, ok := c.TypeAliases[t]; ok {
		return canonical
	}
	return t
}

// IsRecognisedType reports whether t (post-alias) is an admissible type
// token. Scope-local custom types are admissible only within their scope.
func (c *EffectiveConfig) IsRecognisedType(t, scope string) bool {
	if _, ok := c.RecognisedTypes[t]; ok {
		return true
	}
	if scope == "" {
		return false
	}
	rule, ok := c.ScopeMatrix[scope]
	if !ok {
		return false
	}
	_, ok = rule.CustomTypes[t]
	return ok
}

// CategoryAdmits reports whether category is declared and admits t.
func (c *EffectiveConfig) CategoryAdmits(category, t string) bool {
	types, ok := c.Categories[category]
	if !ok {
		return false
	}
	_, ok = types[t]
	return ok
}

// ScopeAdmitsCategory reports whether scope_matrix permits the pairing of
// scope and category. A scope with no rule admits any declared category.
func (c *EffectiveConfig) ScopeAdmitsCategory(scope, category string) bool {
	rule, ok := c.ScopeMatrix[scope]
	if !ok {
		_, declared := c.Categories[category]
		return declared
	}
	if rule.AllCategories {
		return true
	}
	_, ok = rule.Categories[category]
	return ok
}

// ExplicitLocation returns the configured target path override for scope.
func (c *EffectiveConfig) ExplicitLocation(scope string) (string, bool) {
	path, ok := c.ExplicitLocations[scope]
	return path, ok
}

// IsProjectWideScope reports whether scope routes to the repository-root
// memory file.
func (c *EffectiveConfig) IsProjectWideScope(scope string) bool {
	_, ok := c.ProjectWideScopes[scope]
	return ok
}

// DefaultGlobalConfigPath returns the per-user configuration document path.
func DefaultGlobalConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".synaptic", "config.yaml")
	}
	return filepath.Join(homeDir, ".synaptic", "config.yaml")
}

// ProjectConfigPath returns the per-repository configuration document path.
func ProjectConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".synaptic", "config.yaml")
}

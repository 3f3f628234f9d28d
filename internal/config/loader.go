package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Loader reads configuration documents from disk.
type Loader interface {
	// Load reads one document. A missing file yields (nil, nil, nil) so the
	// caller can fall back to defaults; a syntactically invalid file is an
	// error naming the source.
	Load(path string) (*FileConfig, []string, error)

	// LoadEffective loads the global and project documents and resolves
	// them into a frozen EffectiveConfig.
	LoadEffective(globalPath, projectPath string) (*EffectiveConfig, []string, error)
}

// viperLoader implements Loader using Viper.
type viperLoader struct {
	validator Validator
}

// NewLoader creates a Loader backed by the given validator.
func NewLoader(validator Validator) Loader {
	return &viperLoader{validator: validator}
}

// Top-level keys the schema understands; anything else is tolerated with a
// warning.
var knownTopLevelKeys = map[string]struct{}{
	"sync":                {},
	"logging":             {},
	"commit_types":        {},
	"project_wide_scopes": {},
	"locations":           {},
	"obsidian":            {},
}

func (l *viperLoader) Load(path string) (*FileConfig, []string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg FileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}

	interpolateConfig(&cfg)

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, nil, fmt.Errorf("config %s: %w", path, err)
	}

	var warnings []string
	for key := range v.AllSettings() {
		if _, ok := knownTopLevelKeys[key]; !ok {
			warnings = append(warnings, fmt.Sprintf("config %s: unknown key %q ignored", path, key))
		}
	}
	sort.Strings(warnings)

	return &cfg, warnings, nil
}

func (l *viperLoader) LoadEffective(globalPath, projectPath string) (*EffectiveConfig, []string, error) {
	global, globalWarnings, err := l.Load(globalPath)
	if err != nil {
		return nil, nil, err
	}

	project, projectWarnings, err := l.Load(projectPath)
	if err != nil {
		return nil, nil, err
	}

	cfg, resolveWarnings := Resolve(global, project)

	warnings := make([]string, 0, len(globalWarnings)+len(projectWarnings)+len(resolveWarnings))
	warnings = append(warnings, globalWarnings...)
	warnings = append(warnings, projectWarnings...)
	warnings = append(warnings, resolveWarnings...)

	return cfg, warnings, nil
}

// interpolateConfig replaces ${VAR_NAME} in string values with environment
// variable values. Unset variables are left verbatim.
func interpolateConfig(cfg *FileConfig) {
	cfg.Obsidian.VaultPath = interpolateString(cfg.Obsidian.VaultPath)
	cfg.Obsidian.Folder = interpolateString(cfg.Obsidian.Folder)
	cfg.Obsidian.ProjectName = interpolateString(cfg.Obsidian.ProjectName)
	for scope, path := range cfg.Locations {
		cfg.Locations[scope] = interpolateString(path)
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if value := os.Getenv(name); value != "" {
			return value
		}
		return match
	})
}

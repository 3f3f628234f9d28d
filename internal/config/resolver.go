package config

import (
	"fmt"
	"sort"
	"strings"
)

// Resolve merges the built-in defaults with the optional global and project
// documents into a frozen EffectiveConfig. Either document may be nil.
//
// Merge policy, applied key-by-key: scalars and sets in the project document
// override the global; mappings merge with project keys replacing global
// keys of the same name; recognised types are the union of the built-in
// SVCMS types and both documents' `additional` lists; aliases are the union
// with project winning ties.
//
// Schema violations (a scope admitting an unknown category, an alias whose
// target is not a recognised type) degrade to warnings and drop the
// offending rule. Resolve is pure: identical inputs yield an identical
// EffectiveConfig and warning list.
func Resolve(global, project *FileConfig) (*EffectiveConfig, []string) {
	var warnings []string

	cfg := &EffectiveConfig{
		RecognisedTypes:   make(map[string]struct{}),
		TypeAliases:       make(map[string]string),
		Categories:        make(map[string]map[string]struct{}),
		ScopeMatrix:       make(map[string]ScopeRule),
		ExplicitLocations: make(map[string]string),
		ProjectWideScopes: make(map[string]struct{}),
		DefaultDepth:      defaultSyncDepth,
	}

	// Category table: built-ins first, then global, then project replacing
	// same-named entries.
	for name, types := range builtinCategories {
		set := make(map[string]struct{}, len(types))
		for _, t := range types {
			set[strings.ToLower(t)] = struct{}{}
		}
		cfg.Categories[name] = set
	}
	for _, doc := range []*FileConfig{global, project} {
		if doc == nil {
			continue
		}
		for name, section := range doc.CommitTypes.Categories {
			set := make(map[string]struct{}, len(section.Types))
			for _, t := range section.Types {
				set[strings.ToLower(t)] = struct{}{}
			}
			cfg.Categories[strings.ToLower(name)] = set
		}
	}

	// Recognised types: union of every category's types plus both
	// documents' additional lists.
	for _, types := range cfg.Categories {
		for t := range types {
			cfg.RecognisedTypes[t] = struct{}{}
		}
	}
	for _, doc := range []*FileConfig{global, project} {
		if doc == nil {
			continue
		}
		for _, t := range doc.CommitTypes.Additional {
			cfg.RecognisedTypes[strings.ToLower(t)] = struct{}{}
		}
	}

	// Aliases: built-ins, then global, then project winning ties. An alias
	// pointing at an unrecognised type is dropped with a warning.
	for alias, canonical := range builtinAliases {
		cfg.TypeAliases[alias] = canonical
	}
	for _, doc := range []*FileConfig{global, project} {
		if doc == nil {
			continue
		}
		for alias, canonical := range doc.CommitTypes.Aliases {
			cfg.TypeAliases[strings.ToLower(alias)] = strings.ToLower(canonical)
		}
	}
	for alias, canonical := range cfg.TypeAliases {
		if _, ok := cfg.RecognisedTypes[canonical]; !ok {
			warnings = append(warnings, fmt.Sprintf("config: alias %q targets unknown type %q, dropped", alias, canonical))
			delete(cfg.TypeAliases, alias)
		}
	}

	// Scope matrix: global first, project keys replace. A rule referencing
	// an unknown category loses that reference with a warning; a rule left
	// with nothing to admit is dropped entirely, with a warning of its own
	// only when no reference of it was already reported.
	for _, doc := range []*FileConfig{global, project} {
		if doc == nil {
			continue
		}
		for scope, section := range doc.CommitTypes.Scopes {
			rule := ScopeRule{
				Categories:  make(map[string]struct{}),
				CustomTypes: make(map[string]struct{}),
			}
			referenceDropped := false
			for _, cat := range section.Categories {
				cat = strings.ToLower(cat)
				if cat == "all" {
					rule.AllCategories = true
					continue
				}
				if _, ok := cfg.Categories[cat]; !ok {
					warnings = append(warnings, fmt.Sprintf("config: scope %q admits unknown category %q, reference dropped", scope, cat))
					referenceDropped = true
					continue
				}
				rule.Categories[cat] = struct{}{}
			}
			for _, t := range section.CustomTypes {
				rule.CustomTypes[strings.ToLower(t)] = struct{}{}
			}
			if !rule.AllCategories && len(rule.Categories) == 0 && len(rule.CustomTypes) == 0 {
				if !referenceDropped {
					warnings = append(warnings, fmt.Sprintf("config: scope %q admits nothing, rule dropped", scope))
				}
				continue
			}
			cfg.ScopeMatrix[strings.ToLower(scope)] = rule
		}
	}

	// Explicit locations: mapping merge, project replacing global keys.
	for _, doc := range []*FileConfig{global, project} {
		if doc == nil {
			continue
		}
		for scope, path := range doc.Locations {
			cfg.ExplicitLocations[strings.ToLower(scope)] = path
		}
	}

	// Project-wide scopes: a set, so the later document replaces wholesale.
	projectWide := defaultProjectWideScopes
	for _, doc := range []*FileConfig{global, project} {
		if doc != nil && doc.ProjectWideScopes != nil {
			projectWide = doc.ProjectWideScopes
		}
	}
	for _, scope := range projectWide {
		cfg.ProjectWideScopes[strings.ToLower(scope)] = struct{}{}
	}

	// Scalars: project overrides global overrides default.
	for _, doc := range []*FileConfig{global, project} {
		if doc == nil {
			continue
		}
		if doc.Sync.DefaultDepth != nil {
			cfg.DefaultDepth = *doc.Sync.DefaultDepth
		}
		if doc.Sync.PerFileEntryCap != nil {
			cfg.PerFileEntryCap = *doc.Sync.PerFileEntryCap
		}
		if doc.Logging.Level != "" {
			cfg.Logging.Level = doc.Logging.Level
		}
		if doc.Logging.Format != "" {
			cfg.Logging.Format = doc.Logging.Format
		}
		if doc.Obsidian.VaultPath != "" {
			cfg.Obsidian.VaultPath = doc.Obsidian.VaultPath
		}
		if doc.Obsidian.Folder != "" {
			cfg.Obsidian.Folder = doc.Obsidian.Folder
		}
		if doc.Obsidian.ProjectName != "" {
			cfg.Obsidian.ProjectName = doc.Obsidian.ProjectName
		}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	sort.Strings(warnings)
	return cfg, warnings
}

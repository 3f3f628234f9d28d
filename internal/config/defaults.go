package config

// Built-in SVCMS category table, mirrored by DefaultFileConfig so that
// `synaptic init` writes the same taxonomy the resolver assumes.
var builtinCategories = map[string][]string{
	"standard":      {"feat", "fix", "docs", "style", "refactor", "perf", "test", "build", "ci", "chore"},
	"knowledge":     {"learned", "insight", "context", "decision", "memory"},
	"collaboration": {"discussed", "explored", "attempted"},
	"meta":          {"workflow", "preference", "pattern"},
}

var builtinAliases = map[string]string{
	"fixed":   "fix",
	"decided": "decision",
}

// Scopes that route to the repository-root memory file unless overridden.
var defaultProjectWideScopes = []string{
	"test", "build", "chore", "project", "global", "architecture", "config",
}

const defaultSyncDepth = 100

// DefaultFileConfig returns the starter configuration document written by
// `synaptic init`. It spells out the built-in defaults so users have
// something concrete to edit.
func DefaultFileConfig() *FileConfig {
	depth := defaultSyncDepth
	categories := make(map[string]CategorySection, len(builtinCategories))
	descriptions := map[string]string{
		"standard":      "Standard Conventional Commits v1.0.0",
		"knowledge":     "Discovered insights and learnings",
		"collaboration": "Team interactions and explorations",
		"meta":          "Process and methodology",
	}
	for name, types := range builtinCategories {
		categories[name] = CategorySection{
			Description: descriptions[name],
			Types:       append([]string(nil), types...),
		}
	}

	aliases := make(map[string]string, len(builtinAliases))
	for alias, canonical := range builtinAliases {
		aliases[alias] = canonical
	}

	return &FileConfig{
		Sync: SyncSection{
			DefaultDepth: &depth,
		},
		Logging: LoggingSection{
			Level:  "info",
			Format: "text",
		},
		CommitTypes: CommitTypesSection{
			Aliases:    aliases,
			Categories: categories,
		},
		ProjectWideScopes: append([]string(nil), defaultProjectWideScopes...),
	}
}

// DefaultProjectFileConfig returns the starter project document. It carries
// only the sections that are meaningfully per-repository; everything else
// inherits from the global document.
func DefaultProjectFileConfig() *FileConfig {
	return &FileConfig{
		CommitTypes: CommitTypesSection{
			Scopes: map[string]ScopeSection{
				"main": {
					Categories: []string{"standard", "knowledge"},
				},
			},
		},
		Locations: map[string]string{
			"main": "src/CLAUDE.md",
		},
	}
}

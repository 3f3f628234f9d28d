package memory

import (
	"strings"

	"github.com/cocosberlucens/svcms-synaptic/internal/config"
	"github.com/cocosberlucens/svcms-synaptic/internal/svcms"
)

// MemoryFileName is the fixed basename of every memory file.
const MemoryFileName = "CLAUDE.md"

// Route maps a semantic commit to its target memory-file path, relative to
// the repository root (or ~-prefixed for explicit home locations). First
// match wins:
//
//  1. an explicit Location trailer, canonicalised;
//  2. no scope: the repository-root memory file;
//  3. a configured explicit location for the scope;
//  4. a project-wide scope: the repository-root memory file;
//  5. src/<scope>/CLAUDE.md, preserving "/" hierarchy inside the scope.
//
// Route is pure and never consults the filesystem.
func Route(commit *svcms.SemanticCommit, cfg *config.EffectiveConfig) string {
	if commit.Location != "" {
		return canonicaliseLocation(commit.Location)
	}
	if commit.Scope == "" {
		return MemoryFileName
	}
	if path, ok := cfg.ExplicitLocation(commit.Scope); ok {
		return path
	}
	if cfg.IsProjectWideScope(commit.Scope) {
		return MemoryFileName
	}
	return "src/" + commit.Scope + "/" + MemoryFileName
}

// canonicaliseLocation normalises a Location trailer value: a leading "./"
// is stripped, a "~/" prefix is preserved verbatim, and the CLAUDE.md
// basename is appended when missing.
func canonicaliseLocation(location string) string {
	path := strings.TrimPrefix(location, "./")
	if strings.HasSuffix(path, MemoryFileName) {
		return path
	}
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return MemoryFileName
	}
	return path + "/" + MemoryFileName
}

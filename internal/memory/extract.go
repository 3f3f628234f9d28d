package memory

import (
	"sort"

	"github.com/cocosberlucens/svcms-synaptic/internal/config"
	"github.com/cocosberlucens/svcms-synaptic/internal/svcms"
)

// EnrichedMemory is a semantic commit carrying a persistable memory, plus
// its computed placement. Produced by Extract, consumed by the reconciler;
// never persisted itself.
type EnrichedMemory struct {
	svcms.SemanticCommit

	// TargetPath is the memory-file path computed by the router, relative
	// to the repository root (or ~-prefixed).
	TargetPath string

	// DisplayTags is the commit's tag list normalised for rendering:
	// lowercase, lexicographically sorted, duplicates removed.
	DisplayTags []string
}

// Extract selects the commits that carry a non-empty memory trailer and
// enriches each with placement metadata. Commits without a memory are
// silently skipped: the grammar permits carriers without memory trailers.
func Extract(commits []*svcms.SemanticCommit, cfg *config.EffectiveConfig) []EnrichedMemory {
	var memories []EnrichedMemory
	for _, commit := range commits {
		if !commit.HasMemory() {
			continue
		}
		memories = append(memories, EnrichedMemory{
			SemanticCommit: *commit,
			TargetPath:     Route(commit, cfg),
			DisplayTags:    normaliseTags(commit.Tags),
		})
	}
	return memories
}

// normaliseTags sorts and deduplicates the (already lowercased) tag list.
func normaliseTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, tag := range tags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

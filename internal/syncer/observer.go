package syncer

import (
	"context"

	"github.com/cocosberlucens/svcms-synaptic/internal/memory"
)

// Observer receives the stream of enriched memories for optional sibling
// sinks (e.g. a per-commit knowledge base). It sees the same per-target
// ordering as the reconciler and is invoked after the reconciler for each
// target, never before, so an observer failure cannot affect primary
// memory placement. Observer errors degrade to report warnings.
type Observer interface {
	ObserveTarget(ctx context.Context, targetPath string, entries []memory.EnrichedMemory) error
}

package gitlog

import (
	"context"
	"time"
)

// MockHistorySource is a mock implementation of HistorySource for testing.
type MockHistorySource struct {
	// Commits are returned by Walk, newest-first; limit and since are
	// applied the same way the exec implementation applies them.
	Commits []RawCommit

	// Root is returned by RepoRoot.
	Root string

	// WalkError controls the error returned by Walk.
	WalkError error

	// RepoRootError controls the error returned by RepoRoot.
	RepoRootError error

	// WalkCalls records the (limit, since) pairs Walk was invoked with.
	WalkCalls []WalkCall
}

// WalkCall records the arguments of one Walk invocation.
type WalkCall struct {
	Limit int
	Since time.Time
}

// RepoRoot returns the configured root or error.
func (m *MockHistorySource) RepoRoot(ctx context.Context) (string, error) {
	return m.Root, m.RepoRootError
}

// Walk returns the configured commits, honouring limit and since.
func (m *MockHistorySource) Walk(ctx context.Context, limit int, since time.Time) ([]RawCommit, error) {
	m.WalkCalls = append(m.WalkCalls, WalkCall{Limit: limit, Since: since})

	if m.WalkError != nil {
		return nil, m.WalkError
	}

	var out []RawCommit
	for _, c := range m.Commits {
		if limit > 0 && len(out) >= limit {
			break
		}
		if !since.IsZero() && c.AuthorDate.Before(since) {
			break
		}
		out = append(out, c)
	}
	return out, nil
}

package gitlog

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestRepo creates a real git repository in a temp dir.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "user.email", "test@example.com")

	return dir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, output)
}

// commitAt creates an empty commit with a fixed author date.
func commitAt(t *testing.T, dir, message string, date time.Time) {
	t.Helper()
	cmd := exec.Command("git", "commit", "--allow-empty", "-m", message)
	cmd.Dir = dir
	stamp := fmt.Sprintf("%d +0000", date.Unix())
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_DATE="+stamp,
		"GIT_COMMITTER_DATE="+stamp,
	)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git commit: %s", output)
}

func TestWalkEmptyRepository(t *testing.T) {
	dir := initTestRepo(t)
	source := NewExecHistorySource(dir)

	commits, err := source.Walk(context.Background(), 10, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestWalkNewestFirst(t *testing.T) {
	dir := initTestRepo(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	commitAt(t, dir, "feat(auth): first", base)
	commitAt(t, dir, "fix(auth): second", base.Add(time.Hour))
	commitAt(t, dir, "docs(auth): third", base.Add(2*time.Hour))

	source := NewExecHistorySource(dir)
	commits, err := source.Walk(context.Background(), 0, time.Time{})
	require.NoError(t, err)
	require.Len(t, commits, 3)

	assert.Equal(t, "docs(auth): third", commits[0].Message)
	assert.Equal(t, "fix(auth): second", commits[1].Message)
	assert.Equal(t, "feat(auth): first", commits[2].Message)

	for _, c := range commits {
		assert.Len(t, c.Hash, 40)
		assert.Equal(t, c.Hash[:7], c.ShortHash)
		assert.Equal(t, "Test User", c.AuthorName)
		assert.True(t, c.IsEmptyTree, "allow-empty commits on a fresh repo carry the empty tree")
	}
	assert.Equal(t, base.Add(2*time.Hour), commits[0].AuthorDate)
}

func TestWalkHonoursLimit(t *testing.T) {
	dir := initTestRepo(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		commitAt(t, dir, fmt.Sprintf("chore: commit %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	source := NewExecHistorySource(dir)
	commits, err := source.Walk(context.Background(), 2, time.Time{})
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "chore: commit 4", commits[0].Message)
	assert.Equal(t, "chore: commit 3", commits[1].Message)
}

func TestWalkStopsAtSince(t *testing.T) {
	dir := initTestRepo(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	commitAt(t, dir, "old commit", base)
	commitAt(t, dir, "new commit", base.Add(48*time.Hour))

	source := NewExecHistorySource(dir)
	commits, err := source.Walk(context.Background(), 0, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "new commit", commits[0].Message)
}

func TestWalkPreservesMultilineMessages(t *testing.T) {
	dir := initTestRepo(t)
	message := "learned(api): rate limits reset per minute\n\nLonger body here.\n\nMemory: rate limit resets at :00 seconds\nTags: api, retry"
	commitAt(t, dir, message, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	source := NewExecHistorySource(dir)
	commits, err := source.Walk(context.Background(), 0, time.Time{})
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, message, commits[0].Message)
}

func TestRepoRoot(t *testing.T) {
	dir := initTestRepo(t)
	source := NewExecHistorySource(dir)

	root, err := source.RepoRoot(context.Background())
	require.NoError(t, err)

	// Resolve symlinks before comparing: on some systems TempDir lives
	// behind a symlinked /tmp.
	expected, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, expected, resolved)
}

func TestMockHistorySourceAppliesFilters(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock := &MockHistorySource{
		Commits: []RawCommit{
			{Hash: "a", AuthorDate: base.Add(2 * time.Hour)},
			{Hash: "b", AuthorDate: base.Add(time.Hour)},
			{Hash: "c", AuthorDate: base},
		},
	}

	commits, err := mock.Walk(context.Background(), 2, time.Time{})
	require.NoError(t, err)
	assert.Len(t, commits, 2)

	commits, err = mock.Walk(context.Background(), 0, base.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "a", commits[0].Hash)
	assert.Equal(t, "b", commits[1].Hash)

	assert.Len(t, mock.WalkCalls, 2)
}

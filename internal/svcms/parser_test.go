package svcms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocosberlucens/svcms-synaptic/internal/config"
	"github.com/cocosberlucens/svcms-synaptic/internal/gitlog"
)

func testParser(t *testing.T) *Parser {
	t.Helper()
	cfg, warnings := config.Resolve(nil, nil)
	require.Empty(t, warnings)
	return NewParser(cfg)
}

func rawCommit(message string) gitlog.RawCommit {
	return gitlog.RawCommit{
		Hash:       "abc1234def5678900000000000000000000000ff",
		ShortHash:  "abc1234",
		AuthorName: "Test User",
		AuthorDate: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Message:    message,
	}
}

func TestParseSingleTierHeader(t *testing.T) {
	parser := testParser(t)

	commit, warnings := parser.Parse(rawCommit("feat(auth): add JWT authentication"))
	require.NotNil(t, commit)
	assert.Empty(t, warnings)

	assert.Empty(t, commit.Category)
	assert.Equal(t, "feat", commit.Type)
	assert.Equal(t, "auth", commit.Scope)
	assert.Equal(t, "add JWT authentication", commit.Summary)
	assert.Empty(t, commit.Body)
	assert.False(t, commit.HasMemory())
}

func TestParseTwoTierHeader(t *testing.T) {
	parser := testParser(t)

	commit, warnings := parser.Parse(rawCommit("knowledge.learned(auth): JWT expires in 24h"))
	require.NotNil(t, commit)
	assert.Empty(t, warnings)

	assert.Equal(t, "knowledge", commit.Category)
	assert.Equal(t, "learned", commit.Type)
	assert.Equal(t, "auth", commit.Scope)
	assert.Equal(t, "JWT expires in 24h", commit.Summary)
}

func TestParseFullMessage(t *testing.T) {
	parser := testParser(t)

	message := `learned(api): rate limiting resets at minute boundaries

Discovered through testing that the API rate limiter uses fixed minute
boundaries rather than a rolling 60-second window.

Context: Staff Scheduling API integration
Refs: #87, src/api/client.ts
Memory: API rate limit resets at :00 seconds of each minute
Location: src/api/CLAUDE.md
Tags: API, rate-limiting, Retry-Strategy`

	commit, warnings := parser.Parse(rawCommit(message))
	require.NotNil(t, commit)
	assert.Empty(t, warnings)

	assert.Equal(t, "learned", commit.Type)
	assert.Equal(t, "api", commit.Scope)
	assert.Equal(t, "rate limiting resets at minute boundaries", commit.Summary)
	assert.Contains(t, commit.Body, "fixed minute")
	assert.NotContains(t, commit.Body, "Context:")
	assert.Equal(t, "Staff Scheduling API integration", commit.Context)
	assert.Equal(t, "API rate limit resets at :00 seconds of each minute", commit.Memory)
	assert.Equal(t, "src/api/CLAUDE.md", commit.Location)
	assert.Equal(t, []string{"#87", "src/api/client.ts"}, commit.Refs)
	assert.Equal(t, []string{"api", "rate-limiting", "retry-strategy"}, commit.Tags, "tags are lowercased")
}

func TestParseRejectsNonSemanticCommit(t *testing.T) {
	parser := testParser(t)

	for _, message := range []string{
		"random commit message without proper format",
		"Merge branch 'main' into feature",
		"WIP",
		"",
	} {
		commit, warnings := parser.Parse(rawCommit(message))
		assert.Nil(t, commit, "message %q should be rejected", message)
		assert.Empty(t, warnings)
	}
}

func TestParseRejectsUnknownType(t *testing.T) {
	parser := testParser(t)

	commit, warnings := parser.Parse(rawCommit("deployed(infra): push to prod"))
	assert.Nil(t, commit)
	assert.Empty(t, warnings, "rejection is silent")
}

func TestParseRejectsEmptySummary(t *testing.T) {
	parser := testParser(t)

	commit, _ := parser.Parse(rawCommit("feat(auth):    "))
	assert.Nil(t, commit)
}

func TestParseAliasCanonicalisation(t *testing.T) {
	parser := testParser(t)

	commit, _ := parser.Parse(rawCommit("decided(api): use event-driven pattern"))
	require.NotNil(t, commit)
	assert.Equal(t, "decision", commit.Type, "decided canonicalises to decision")

	commit, _ = parser.Parse(rawCommit("fixed(api): repair flaky retry"))
	require.NotNil(t, commit)
	assert.Equal(t, "fix", commit.Type)
}

func TestParseScopeWithHierarchy(t *testing.T) {
	parser := testParser(t)

	commit, _ := parser.Parse(rawCommit("feat(api/client): add retry budget"))
	require.NotNil(t, commit)
	assert.Equal(t, "api/client", commit.Scope)
}

func TestParseTwoTierDowngrade(t *testing.T) {
	global := &config.FileConfig{
		CommitTypes: config.CommitTypesSection{
			Scopes: map[string]config.ScopeSection{
				"auth": {Categories: []string{"standard"}},
			},
		},
	}
	cfg, _ := config.Resolve(global, nil)
	parser := NewParser(cfg)

	// knowledge is not admitted for scope auth: downgrade to single-tier.
	commit, warnings := parser.Parse(rawCommit("knowledge.learned(auth): tokens rotate"))
	require.NotNil(t, commit)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "single-tier")

	assert.Empty(t, commit.Category)
	assert.Equal(t, "learned", commit.Type)
	assert.Equal(t, "auth", commit.Scope)
}

func TestParseTwoTierCategoryTypeMismatchDowngrades(t *testing.T) {
	parser := testParser(t)

	// feat is not a knowledge type.
	commit, warnings := parser.Parse(rawCommit("knowledge.feat(auth): some feature"))
	require.NotNil(t, commit)
	require.Len(t, warnings, 1)
	assert.Empty(t, commit.Category)
	assert.Equal(t, "feat", commit.Type)
}

func TestParseDuplicateTrailerLastWins(t *testing.T) {
	parser := testParser(t)

	message := `learned(db): connection pool sizing

Memory: first value
Memory: second value`

	commit, warnings := parser.Parse(rawCommit(message))
	require.NotNil(t, commit)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "duplicate trailer Memory")
	assert.Equal(t, "second value", commit.Memory)
}

func TestParseUnknownTrailerIgnoredWithWarning(t *testing.T) {
	parser := testParser(t)

	message := `learned(db): pool sizing

Memory: pools cap at 20
Signed-off-by: Someone <someone@example.com>`

	commit, warnings := parser.Parse(rawCommit(message))
	require.NotNil(t, commit)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `unknown trailer key "Signed-off-by"`)
	assert.Equal(t, "pools cap at 20", commit.Memory)
}

func TestParseTrailerKeysCaseInsensitive(t *testing.T) {
	parser := testParser(t)

	message := `learned(db): pool sizing

memory: pools cap at 20
TAGS: db, Pooling`

	commit, warnings := parser.Parse(rawCommit(message))
	require.NotNil(t, commit)
	assert.Empty(t, warnings)
	assert.Equal(t, "pools cap at 20", commit.Memory)
	assert.Equal(t, []string{"db", "pooling"}, commit.Tags)
}

func TestParseSingularTrailerSpellings(t *testing.T) {
	parser := testParser(t)

	message := `learned(db): pool sizing

Ref: #12
Tag: db
Memory: something`

	commit, _ := parser.Parse(rawCommit(message))
	require.NotNil(t, commit)
	assert.Equal(t, []string{"#12"}, commit.Refs)
	assert.Equal(t, []string{"db"}, commit.Tags)
}

func TestParseAttributionFooterStripped(t *testing.T) {
	parser := testParser(t)

	message := `learned(auth): token refresh is lazy

Some body prose.

Memory: tokens refresh on first use after expiry

Co-Authored-By: Bot <bot@example.com>`

	commit, warnings := parser.Parse(rawCommit(message))
	require.NotNil(t, commit)
	assert.Empty(t, warnings)
	assert.Equal(t, "tokens refresh on first use after expiry", commit.Memory)
	assert.NotContains(t, commit.Body, "Co-Authored-By")
}

func TestParseProseBetweenTrailersStaysInBody(t *testing.T) {
	parser := testParser(t)

	message := `learned(auth): token refresh is lazy

Context: debugging session
an interleaved note the user wrote
Memory: tokens refresh lazily
Tags: auth`

	commit, _ := parser.Parse(rawCommit(message))
	require.NotNil(t, commit)

	// Greedy from the bottom: the interleaved line terminates the block, so
	// Context above it lands in the body.
	assert.Equal(t, "tokens refresh lazily", commit.Memory)
	assert.Equal(t, []string{"auth"}, commit.Tags)
	assert.Empty(t, commit.Context)
	assert.Contains(t, commit.Body, "Context: debugging session")
	assert.Contains(t, commit.Body, "interleaved note")
}

func TestParseEmptyMemoryTrailer(t *testing.T) {
	parser := testParser(t)

	message := `learned(auth): something

Memory:   `

	commit, _ := parser.Parse(rawCommit(message))
	require.NotNil(t, commit)
	assert.False(t, commit.HasMemory())
}

func TestParseScopeCustomType(t *testing.T) {
	global := &config.FileConfig{
		CommitTypes: config.CommitTypesSection{
			Scopes: map[string]config.ScopeSection{
				"auth": {Categories: []string{"standard"}, CustomTypes: []string{"integrated"}},
			},
		},
	}
	cfg, _ := config.Resolve(global, nil)
	parser := NewParser(cfg)

	commit, _ := parser.Parse(rawCommit("integrated(auth): wire SSO provider"))
	require.NotNil(t, commit)
	assert.Equal(t, "integrated", commit.Type)

	// The custom type is scope-local.
	commit, _ = parser.Parse(rawCommit("integrated(api): wire SSO provider"))
	assert.Nil(t, commit)
}

func TestHeaderLineRoundTrip(t *testing.T) {
	parser := testParser(t)

	tests := []string{
		"feat(auth): add JWT authentication",
		"knowledge.learned(auth): JWT expires in 24h",
		"decision: use event sourcing",
		"meta.workflow(project): adopt trunk-based development",
	}

	for _, header := range tests {
		t.Run(header, func(t *testing.T) {
			commit, warnings := parser.Parse(rawCommit(header))
			require.NotNil(t, commit)
			require.Empty(t, warnings)
			assert.Equal(t, header, commit.HeaderLine())
		})
	}
}

func TestParseCollapsesWhitespaceAfterColon(t *testing.T) {
	parser := testParser(t)

	commit, _ := parser.Parse(rawCommit("feat(auth):     add JWT authentication"))
	require.NotNil(t, commit)
	assert.Equal(t, "add JWT authentication", commit.Summary)
	assert.Equal(t, "feat(auth): add JWT authentication", commit.HeaderLine())
}

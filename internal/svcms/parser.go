package svcms

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cocosberlucens/svcms-synaptic/internal/config"
	"github.com/cocosberlucens/svcms-synaptic/internal/gitlog"
)

// Header patterns. Identifiers are lowercase [a-z][a-z0-9_-]*; scope may
// contain "/" to denote hierarchy. Two-tier is tried first.
var (
	twoTierPattern = regexp.MustCompile(
		`^([a-z][a-z0-9_-]*)\.([a-z][a-z0-9_-]*)(?:\(([a-z][a-z0-9_-]*(?:/[a-z][a-z0-9_-]*)*)\))?:\s+(.+)$`)
	singleTierPattern = regexp.MustCompile(
		`^([a-z][a-z0-9_-]*)(?:\(([a-z][a-z0-9_-]*(?:/[a-z][a-z0-9_-]*)*)\))?:\s+(.+)$`)

	// A trailer-shaped line: Key: value. Key matching is case-insensitive;
	// keys are canonicalised on storage.
	trailerPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z-]*):\s*(.*)$`)

	// Bot attribution footers stripped when they sit below the last trailer.
	attributionPattern = regexp.MustCompile(`(?i)^(co-authored-by:|.*generated with )`)
)

// Canonical trailer keys, indexed by lowercase spelling. Ref/Tag singular
// spellings are accepted as aliases.
var canonicalTrailerKeys = map[string]string{
	"context":  "Context",
	"refs":     "Refs",
	"ref":      "Refs",
	"memory":   "Memory",
	"location": "Location",
	"tags":     "Tags",
	"tag":      "Tags",
}

// Parser turns raw commit messages into SemanticCommit records, validating
// them against the effective configuration.
type Parser struct {
	cfg *config.EffectiveConfig
}

// NewParser creates a Parser bound to the given effective configuration.
func NewParser(cfg *config.EffectiveConfig) *Parser {
	return &Parser{cfg: cfg}
}

// Parse interprets one raw commit. A message that does not match either
// grammar, or whose type is not recognised, yields (nil, nil): rejection is
// the normal path for non-semantic commits, not an anomaly. Warnings report
// validation downgrades and trailer anomalies on accepted commits.
func (p *Parser) Parse(raw gitlog.RawCommit) (*SemanticCommit, []string) {
	lines := strings.Split(raw.Message, "\n")
	if len(lines) == 0 {
		return nil, nil
	}

	header, ok := p.parseHeader(lines[0])
	if !ok {
		return nil, nil
	}

	var warnings []string

	canonical := p.cfg.CanonicalType(header.typ)
	if !p.cfg.IsRecognisedType(canonical, header.scope) {
		return nil, nil
	}

	category := header.category
	if category != "" {
		downgrade := ""
		switch {
		case !p.cfg.CategoryAdmits(category, canonical):
			downgrade = fmt.Sprintf("category %q does not admit type %q", category, canonical)
		case header.scope != "" && !p.cfg.ScopeAdmitsCategory(header.scope, category):
			downgrade = fmt.Sprintf("scope %q does not admit category %q", header.scope, category)
		}
		if downgrade != "" {
			warnings = append(warnings, fmt.Sprintf(
				"commit %s: %s, interpreting header as single-tier", raw.ShortHash, downgrade))
			category = ""
		}
	}

	body, trailers, trailerWarnings := p.parseTrailers(raw.ShortHash, lines[1:])
	warnings = append(warnings, trailerWarnings...)

	commit := &SemanticCommit{
		Hash:        raw.Hash,
		ShortHash:   raw.ShortHash,
		Author:      raw.AuthorName,
		Date:        raw.AuthorDate,
		Category:    category,
		Type:        canonical,
		Scope:       header.scope,
		Summary:     header.summary,
		Body:        body,
		Context:     trailers["Context"],
		Memory:      trailers["Memory"],
		Location:    trailers["Location"],
		Refs:        splitList(trailers["Refs"], false),
		Tags:        splitList(trailers["Tags"], true),
		IsEmptyTree: raw.IsEmptyTree,
	}

	return commit, warnings
}

type parsedHeader struct {
	category string
	typ      string
	scope    string
	summary  string
}

func (p *Parser) parseHeader(line string) (parsedHeader, bool) {
	if m := twoTierPattern.FindStringSubmatch(line); m != nil {
		summary := strings.TrimSpace(m[4])
		if summary == "" {
			return parsedHeader{}, false
		}
		return parsedHeader{category: m[1], typ: m[2], scope: m[3], summary: summary}, true
	}
	if m := singleTierPattern.FindStringSubmatch(line); m != nil {
		summary := strings.TrimSpace(m[3])
		if summary == "" {
			return parsedHeader{}, false
		}
		return parsedHeader{typ: m[1], scope: m[2], summary: summary}, true
	}
	return parsedHeader{}, false
}

// parseTrailers splits the post-header lines into free prose and the
// trailing block of Key: value lines. Recognition is greedy from the
// bottom: walking upward from the last non-blank line, contiguous
// trailer-shaped lines are collected; the first line that is neither
// terminates the block. Attribution footers below the last trailer are
// dropped from the body.
func (p *Parser) parseTrailers(shortHash string, rest []string) (string, map[string]string, []string) {
	trailers := make(map[string]string)
	var warnings []string

	end := len(rest)
	for end > 0 {
		line := strings.TrimSpace(rest[end-1])
		if line == "" || attributionPattern.MatchString(line) {
			end--
			continue
		}
		break
	}

	blockStart := end
	for blockStart > 0 {
		line := rest[blockStart-1]
		m := trailerPattern.FindStringSubmatch(line)
		if m == nil {
			break
		}

		key, known := canonicalTrailerKeys[strings.ToLower(m[1])]
		if !known {
			warnings = append(warnings, fmt.Sprintf(
				"commit %s: unknown trailer key %q ignored", shortHash, m[1]))
		} else if _, dup := trailers[key]; dup {
			// Scanning bottom-up, the value already stored is the later
			// occurrence, which wins.
			warnings = append(warnings, fmt.Sprintf(
				"commit %s: duplicate trailer %s, last occurrence wins", shortHash, key))
		} else {
			trailers[key] = strings.TrimSpace(m[2])
		}
		blockStart--
	}

	body := strings.TrimSpace(strings.Join(rest[:blockStart], "\n"))

	return body, trailers, warnings
}

// splitList splits a comma-separated trailer value into trimmed tokens,
// dropping empties. Tokens are lowercased for tags only.
func splitList(value string, lower bool) []string {
	if value == "" {
		return nil
	}
	var tokens []string
	for _, token := range strings.Split(value, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if lower {
			token = strings.ToLower(token)
		}
		tokens = append(tokens, token)
	}
	return tokens
}

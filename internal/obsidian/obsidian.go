// Package obsidian renders enriched memories into an Obsidian vault as one
// note per commit. It implements the orchestrator's observer interface and
// is strictly a sibling sink: it runs after primary memory placement and
// its failures never affect CLAUDE.md files.
package obsidian

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/cocosberlucens/svcms-synaptic/internal/config"
	"github.com/cocosberlucens/svcms-synaptic/internal/memory"
	"github.com/cocosberlucens/svcms-synaptic/internal/util"
)

const defaultFolder = "synaptic"

// Manager owns the vault layout and note rendering.
type Manager struct {
	vaultPath   string
	folder      string
	projectName string
	tmpl        *template.Template
}

// NewManager validates the configured vault and prepares the note
// template. The vault directory must already exist; Synaptic never
// creates vaults, only content inside them.
func NewManager(cfg config.ObsidianSection) (*Manager, error) {
	vaultPath, err := util.ExpandPath(cfg.VaultPath)
	if err != nil {
		return nil, err
	}
	if vaultPath == "" {
		return nil, fmt.Errorf("obsidian vault path is not configured")
	}
	if _, err := os.Stat(vaultPath); err != nil {
		return nil, fmt.Errorf("obsidian vault path does not exist: %s", vaultPath)
	}

	folder := cfg.Folder
	if folder == "" {
		folder = defaultFolder
	}

	projectName := cfg.ProjectName
	if projectName == "" {
		projectName = "project"
	}

	tmpl, err := template.New("note").Parse(noteTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse note template: %w", err)
	}

	return &Manager{
		vaultPath:   vaultPath,
		folder:      folder,
		projectName: projectName,
		tmpl:        tmpl,
	}, nil
}

// CommitsDir returns the directory holding this project's commit notes.
func (m *Manager) CommitsDir() string {
	return filepath.Join(m.vaultPath, m.folder, "projects", m.projectName, "commits")
}

// ObserveTarget renders one note per entry. Existing notes are left
// untouched, so re-syncing is idempotent.
func (m *Manager) ObserveTarget(ctx context.Context, target string, entries []memory.EnrichedMemory) error {
	dir := m.CommitsDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create commits directory: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		notePath := filepath.Join(dir, noteFilename(entry))
		if _, err := os.Stat(notePath); err == nil {
			continue
		}

		content, err := m.renderNote(entry)
		if err != nil {
			return fmt.Errorf("failed to render note for %s: %w", entry.ShortHash, err)
		}
		if err := util.WriteFileAtomic(notePath, []byte(content), 0644); err != nil {
			return err
		}
	}

	return nil
}

type noteData struct {
	Hash        string
	Type        string
	Scope       string
	Summary     string
	Body        string
	Date        string
	Memory      string
	Context     string
	Project     string
	Author      string
	Refs        []string
	Tags        string
	EmptyCommit bool
}

func (m *Manager) renderNote(entry memory.EnrichedMemory) (string, error) {
	data := noteData{
		Hash:        entry.ShortHash,
		Type:        entry.Type,
		Scope:       entry.Scope,
		Summary:     entry.Summary,
		Body:        entry.Body,
		Date:        entry.Date.Format("2006-01-02"),
		Memory:      entry.Memory,
		Context:     entry.Context,
		Project:     m.projectName,
		Author:      entry.Author,
		Refs:        entry.Refs,
		Tags:        strings.Join(entry.DisplayTags, ", "),
		EmptyCommit: entry.IsEmptyTree,
	}

	var b strings.Builder
	if err := m.tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// noteFilename builds YYYY-MM-DD-type-scope-summary.md with the summary
// sanitised for filesystem use and truncated.
func noteFilename(entry memory.EnrichedMemory) string {
	scope := entry.Scope
	if scope == "" {
		scope = "general"
	}
	scope = strings.ReplaceAll(scope, "/", "-")

	summary := sanitiseSummary(entry.Summary)
	return fmt.Sprintf("%s-%s-%s-%s.md", entry.Date.Format("2006-01-02"), entry.Type, scope, summary)
}

func sanitiseSummary(summary string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, summary)
	mapped = strings.ToLower(strings.Trim(mapped, "-"))
	if len(mapped) > 30 {
		mapped = strings.Trim(mapped[:30], "-")
	}
	return mapped
}

const noteTemplate = `---
id: {{.Hash}}
type: {{.Type}}
scope: {{.Scope}}
date: {{.Date}}
tags: [{{.Tags}}]
project: {{.Project}}
---

# {{.Type}}{{if .Scope}}({{.Scope}}){{end}}: {{.Summary}}

## Key Insight

{{.Memory}}
{{if .EmptyCommit}}
> Pure knowledge commit (no code changes)
{{end}}{{if .Body}}
## What Changed

{{.Body}}
{{end}}{{if .Context}}
## Context

{{.Context}}
{{end}}{{if .Refs}}
## References
{{range .Refs}}
- {{.}}{{end}}
{{end}}
---
*Commit {{.Hash}} | {{.Author}} | {{.Date}}*
`

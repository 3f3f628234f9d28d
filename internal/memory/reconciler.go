package memory

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cocosberlucens/svcms-synaptic/internal/util"
)

// sectionByline is the italic line emitted directly under a freshly
// synthesised memories heading. Readers never treat it as an entry; its
// exact wording is a convention, not a contract.
const sectionByline = "*Curated by Synaptic from semantic commit history.*"

// sectionHeadingPattern matches a level-2 heading whose text begins with
// the literal token "SVCMS Memories", case-insensitively.
var sectionHeadingPattern = regexp.MustCompile(`(?i)^##\s+svcms memories`)

// MergeResult is the outcome of reconciling one target's content in memory.
type MergeResult struct {
	// NewContent is the full post-merge file content.
	NewContent string

	// Created is set when the target file did not exist.
	Created bool

	// SectionAdded is set when an existing file gained a fresh memories
	// section.
	SectionAdded bool

	// EntriesAdded and DuplicatesSkipped count the incoming entries.
	EntriesAdded      int
	DuplicatesSkipped int

	// EntryCount is the post-merge number of entries in the section.
	EntryCount int

	Warnings []string
}

// Changed reports whether the merge altered the file content.
func (r *MergeResult) Changed() bool {
	return r.Created || r.EntriesAdded > 0
}

// Merge reconciles the ordered entry list into the given file content
// without touching the filesystem. Entries must be sorted ascending by
// author date; deduplication is strictly by short commit hash. Everything
// outside the memories section, and every non-entry line inside it, is
// preserved byte-for-byte.
func Merge(content string, exists bool, title string, entries []EnrichedMemory) MergeResult {
	if !exists {
		return mergeFresh(title, entries)
	}

	var result MergeResult

	lines := strings.Split(content, "\n")
	headingIdx := -1
	for i, line := range lines {
		if sectionHeadingPattern.MatchString(line) {
			if headingIdx < 0 {
				headingIdx = i
			} else {
				result.Warnings = append(result.Warnings,
					"multiple memories sections found, reconciling the first")
				break
			}
		}
	}

	if headingIdx < 0 {
		return mergeAppendSection(content, entries, result.Warnings)
	}

	// The section body runs from the line after the heading up to the next
	// level-2 heading or end of file.
	bodyEnd := len(lines)
	for i := headingIdx + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "## ") {
			bodyEnd = i
			break
		}
	}
	body := lines[headingIdx+1 : bodyEnd]

	existing := make(map[string]struct{})
	for _, line := range body {
		if id, ok := EntryIdentity(line); ok {
			existing[id] = struct{}{}
		}
	}
	result.EntryCount = len(existing)

	var fresh []string
	for _, entry := range entries {
		if _, dup := existing[entry.ShortHash]; dup {
			result.DuplicatesSkipped++
			continue
		}
		existing[entry.ShortHash] = struct{}{}
		fresh = append(fresh, FormatEntry(entry))
		result.EntriesAdded++
		result.EntryCount++
	}

	if len(fresh) == 0 {
		result.NewContent = content
		return result
	}

	// Append after the last non-blank body line, preserving any trailing
	// blank lines that separate the section from what follows.
	insert := len(body)
	for insert > 0 && strings.TrimSpace(body[insert-1]) == "" {
		insert--
	}
	newBody := make([]string, 0, len(body)+len(fresh)+1)
	newBody = append(newBody, body[:insert]...)
	if insert == 0 {
		// Empty section body: keep one blank line under the heading.
		newBody = append(newBody, "")
	}
	newBody = append(newBody, fresh...)
	newBody = append(newBody, body[insert:]...)

	out := make([]string, 0, len(lines)+len(fresh)+1)
	out = append(out, lines[:headingIdx+1]...)
	out = append(out, newBody...)
	out = append(out, lines[bodyEnd:]...)
	result.NewContent = strings.Join(out, "\n")
	return result
}

// mergeFresh synthesises a minimal memory file: a top-of-file heading, a
// one-line preamble, and the memories section with its byline.
func mergeFresh(title string, entries []EnrichedMemory) MergeResult {
	result := MergeResult{Created: true}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString("Knowledge captured from semantic commit history.\n\n")
	b.WriteString("## SVCMS Memories\n\n")
	b.WriteString(sectionByline + "\n\n")

	for _, entry := range entries {
		b.WriteString(FormatEntry(entry) + "\n")
		result.EntriesAdded++
		result.EntryCount++
	}

	result.NewContent = b.String()
	return result
}

// mergeAppendSection appends a fresh memories section at end of file,
// separated by exactly one blank line.
func mergeAppendSection(content string, entries []EnrichedMemory, warnings []string) MergeResult {
	result := MergeResult{SectionAdded: true, Warnings: warnings}

	var b strings.Builder
	trimmed := strings.TrimRight(content, "\n")
	if trimmed != "" {
		b.WriteString(trimmed + "\n\n")
	}
	b.WriteString("## SVCMS Memories\n\n")
	b.WriteString(sectionByline + "\n\n")

	for _, entry := range entries {
		b.WriteString(FormatEntry(entry) + "\n")
		result.EntriesAdded++
		result.EntryCount++
	}

	result.NewContent = b.String()
	return result
}

// Reconciler performs the read-merge-write cycle for single targets. For
// any one target path exactly one reconciliation is live at a time; the
// orchestrator's serial per-target loop guarantees that.
type Reconciler struct {
	// EntryCap is the per-file post-merge entry limit; 0 disables the
	// check. A breach warns but never blocks the write.
	EntryCap int
}

// FileOutcome reports one target's reconciliation.
type FileOutcome struct {
	MergeResult

	// Path is the router-assigned display path; AbsPath the resolved
	// filesystem location.
	Path    string
	AbsPath string

	// OldContent is the pre-merge content, kept for dry-run previews.
	OldContent string
}

// Reconcile merges entries into the target at absPath and, unless dryRun
// is set, writes the result atomically (temp file and rename in the target
// directory). Entries must be sorted ascending by author date.
func (r *Reconciler) Reconcile(absPath, displayPath string, entries []EnrichedMemory, dryRun bool) (*FileOutcome, error) {
	content, exists, warnings, err := readTarget(absPath)
	if err != nil {
		return nil, err
	}

	var merge MergeResult
	if len(warnings) > 0 {
		// Content readTarget could not accept is not reconciled
		// structurally: it gains a fresh memories section instead.
		merge = mergeAppendSection(content, entries, nil)
	} else {
		merge = Merge(content, exists, titleFor(displayPath), entries)
	}
	merge.Warnings = append(warnings, merge.Warnings...)

	if r.EntryCap > 0 && merge.EntryCount > r.EntryCap {
		merge.Warnings = append(merge.Warnings, fmt.Sprintf(
			"%s: %d entries exceed the per-file cap of %d", displayPath, merge.EntryCount, r.EntryCap))
	}

	outcome := &FileOutcome{
		MergeResult: merge,
		Path:        displayPath,
		AbsPath:     absPath,
		OldContent:  content,
	}

	if !dryRun && merge.Changed() {
		if err := util.WriteFileAtomic(absPath, []byte(merge.NewContent), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", displayPath, err)
		}
	}

	return outcome, nil
}

// readTarget loads the current content of a target file. A file that is
// not valid UTF-8 cannot be reconciled structurally; it is treated as
// having no memories section and gains a fresh one, with a warning.
func readTarget(absPath string) (content string, exists bool, warnings []string, err error) {
	data, err := os.ReadFile(absPath)
	if os.IsNotExist(err) {
		return "", false, nil, nil
	}
	if err != nil {
		return "", false, nil, fmt.Errorf("failed to read %s: %w", absPath, err)
	}
	if !utf8.Valid(data) {
		return string(data), true, []string{fmt.Sprintf(
			"%s: existing content is not valid UTF-8, appending a fresh memories section", absPath)}, nil
	}
	return string(data), true, nil, nil
}

// titleFor derives the top-of-file heading for a freshly created memory
// file from its display path.
func titleFor(displayPath string) string {
	dir := path.Dir(strings.ReplaceAll(displayPath, "\\", "/"))
	if dir == "." || dir == "/" || dir == "~" {
		return "Project Memory"
	}
	return path.Base(dir) + " Memory"
}

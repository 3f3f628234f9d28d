package memory

import (
	"fmt"
	"regexp"
	"strings"
)

// Memory entries are single markdown bullets of the shape
//
//	- <memory text>: <type> `<header line>` (<short-hash>) [tag, tag]
//
// The short hash is the deduplication key; the tag list is omitted
// entirely when empty.
var entryPattern = regexp.MustCompile("^- .*`[^`]+` \\(([0-9a-f]{7,8})\\)( \\[[^\\]]*\\])?$")

// FormatEntry renders one memory as its bullet line.
func FormatEntry(m EnrichedMemory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s: %s `%s` (%s)", m.Memory, m.Type, m.HeaderLine(), m.ShortHash)
	if len(m.DisplayTags) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(m.DisplayTags, ", "))
	}
	return b.String()
}

// EntryIdentity extracts the short commit hash from a bullet line, if the
// line is a memory entry at all.
func EntryIdentity(line string) (string, bool) {
	m := entryPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

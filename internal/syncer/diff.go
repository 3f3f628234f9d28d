package syncer

import (
	"github.com/pmezard/go-difflib/difflib"
)

// unifiedDiff renders a dry-run preview of one target's pending change.
func unifiedDiff(path, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path + " (after sync)",
		Context:  3,
	})
}

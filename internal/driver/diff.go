package driver

import (
	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff renders the change of one file as a unified diff with three
// lines of context; it is empty when before and after are equal.
func UnifiedDiff(path string, before, after []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: path,
		ToFile:   path + " (formatted)",
		Context:  3,
	})
}

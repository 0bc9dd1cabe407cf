package format

import (
	"fmt"
	"strings"

	"cfnfmt/internal/document"
)

// EnsureKey inserts "<key>: <value>\n" in front of the first top-level group
// when key is missing at the top level. It reports whether text was inserted.
func EnsureKey(doc *document.Document, key, value string) (bool, error) {
	snap := doc.Snapshot()
	top := snap.Top()
	if top == nil {
		return false, nil
	}
	groups := snap.Groups(top)
	if len(groups) == 0 {
		return false, nil
	}
	for _, g := range groups {
		if g.Name == key {
			return false, nil
		}
	}

	at := top.Children[groups[0].Start].Range.Start
	line := strings.Repeat(" ", top.Indent) + key + ": " + value + "\n"
	if err := doc.Apply([]document.TextEdit{document.Insert(at, line)}); err != nil {
		return false, fmt.Errorf("insert %s: %w", key, err)
	}
	return true, nil
}

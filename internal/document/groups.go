package document

import (
	"cfnfmt/internal/syntax"
)

// Group is a logical key/value unit inside a list of sibling nodes. All
// fields are indices into that list.
type Group struct {
	Name  string
	Start int // first child owned by the group (leading comments and blanks)
	Key   int
	Sep   int
	End   int // value index, or Sep when the value is empty
}

// Of returns the children spanned by the group.
func (g Group) Of(children []*syntax.Node) []*syntax.Node {
	return children[g.Start : g.End+1]
}

// Groups returns the groups of children in document order. A group is a key
// leaf followed, possibly after trivia, by a separator; it starts right after
// the previous group and ends at its value.
func Groups(src []byte, children []*syntax.Node) []Group {
	var out []Group
	next := 0
	for i := 0; i < len(children); i++ {
		if children[i].Kind != syntax.KindKey {
			continue
		}
		sep := i + 1
		for sep < len(children) && children[sep].Kind.IsTrivia() {
			sep++
		}
		if sep >= len(children) || children[sep].Kind != syntax.KindSeparator {
			continue
		}
		g := Group{
			Name:  children[i].Name(src),
			Start: next,
			Key:   i,
			Sep:   sep,
			End:   sep,
		}
		if v := sep + 1; v < len(children) && isValue(children[v]) {
			g.End = v
		}
		out = append(out, g)
		next = g.End + 1
		i = g.End
	}
	return out
}

// IndexGroups maps key names to groups. When a key repeats, the last
// occurrence wins.
func IndexGroups(src []byte, children []*syntax.Node) map[string]Group {
	groups := Groups(src, children)
	index := make(map[string]Group, len(groups))
	for _, g := range groups {
		index[g.Name] = g
	}
	return index
}

func isValue(n *syntax.Node) bool {
	switch n.Kind {
	case syntax.KindScalar, syntax.KindMap, syntax.KindSeq:
		return true
	}
	return false
}

package syntax

import (
	"strings"
)

// Kind tags a CST node.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindDocument is the root; its children tile the whole text.
	KindDocument
	// KindMarker holds directives, the "---" start line or the "..." end line.
	KindMarker
	// KindKey is a mapping key including the indentation in front of it.
	KindKey
	// KindSeparator is the ':' indicator with the inline tail that precedes the value.
	KindSeparator
	// KindScalar is an opaque value: scalars, flow collections, unmodelled layouts.
	KindScalar
	// KindMap is a block mapping.
	KindMap
	// KindSeq is a block sequence.
	KindSeq
	// KindItem is one entry of a block sequence.
	KindItem
	// KindIndicator is the "- " prefix of a sequence item.
	KindIndicator
	KindComment
	KindBlank
	// KindFragment is synthesized text that never came from the source.
	KindFragment
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindMarker:
		return "marker"
	case KindKey:
		return "key"
	case KindSeparator:
		return "separator"
	case KindScalar:
		return "scalar"
	case KindMap:
		return "map"
	case KindSeq:
		return "seq"
	case KindItem:
		return "item"
	case KindIndicator:
		return "indicator"
	case KindComment:
		return "comment"
	case KindBlank:
		return "blank"
	case KindFragment:
		return "fragment"
	default:
		return "invalid"
	}
}

// IsTrivia reports whether the kind is a comment or blank line.
func (k Kind) IsTrivia() bool {
	return k == KindComment || k == KindBlank
}

// IsContainer reports whether nodes of this kind own children instead of text.
func (k Kind) IsContainer() bool {
	switch k {
	case KindDocument, KindMap, KindSeq, KindItem:
		return true
	}
	return false
}

// Range is a half-open byte range [Start, End) into the text a tree was parsed from.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

// Node is a CST element. Leaves carry a Range (or Text for fragments),
// containers carry Children. Ranges are only valid against the text the
// tree was parsed from; any edit must be committed by reparsing.
type Node struct {
	Kind     Kind
	Range    Range
	Text     string // KindFragment payload
	Indent   int    // column of the first significant character
	Children []*Node
}

// Fragment creates a synthesized leaf.
func Fragment(text string) *Node {
	return &Node{Kind: KindFragment, Text: text}
}

// Source returns the leaf text of n, or the printed text of a container.
func (n *Node) Source(src []byte) string {
	if n == nil {
		return ""
	}
	if n.Kind == KindFragment {
		return n.Text
	}
	if !n.Kind.IsContainer() {
		return string(src[n.Range.Start:n.Range.End])
	}
	w := NewWriter(src)
	w.WriteNode(n)
	return string(w.Bytes())
}

// Name returns the identity of a key leaf: its trimmed literal text.
func (n *Node) Name(src []byte) string {
	if n == nil || n.Kind != KindKey {
		return ""
	}
	return strings.TrimSpace(n.Source(src))
}

// WithChildren returns a shallow copy of n that owns children.
func (n *Node) WithChildren(children []*Node) *Node {
	cp := *n
	cp.Children = children
	return &cp
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Replace returns a copy of root where old is substituted by repl. Nodes on
// the path to old are copied; everything else is shared.
func Replace(root, old, repl *Node) *Node {
	if root == old {
		return repl
	}
	for i, c := range root.Children {
		next := Replace(c, old, repl)
		if next == c {
			continue
		}
		children := make([]*Node, len(root.Children))
		copy(children, root.Children)
		children[i] = next
		return root.WithChildren(children)
	}
	return root
}

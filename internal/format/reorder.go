package format

import (
	"fmt"

	"cfnfmt/internal/document"
	"cfnfmt/internal/syntax"
)

// Move records one relocation performed by Reorder.
type Move struct {
	Key   string
	After string
}

// Reorder rearranges the groups of children so that the groups named in
// order appear in that order. src is the text the children were parsed from.
//
// The first present name stays where it is and becomes the anchor. Every
// following name is cut out as one slice (its leading trivia, key, separator
// and value) and reinserted right after the anchor, which then moves on to
// it. Unlisted groups between the anchor and a moved group end up after the
// moved group.
func Reorder(src []byte, children []*syntax.Node, order []string) ([]*syntax.Node, []Move) {
	index := document.IndexGroups(src, children)
	present := make([]string, 0, len(order))
	seen := make(map[string]struct{}, len(order))
	for _, name := range order {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := index[name]; ok {
			present = append(present, name)
		}
	}
	if len(present) < 2 {
		return children, nil
	}

	out := append([]*syntax.Node(nil), children...)
	var moves []Move
	anchorName := present[0]
	for _, name := range present[1:] {
		groups := document.Groups(src, out)
		index = make(map[string]document.Group, len(groups))
		for _, g := range groups {
			index[g.Name] = g
		}
		anchor, target := index[anchorName], index[name]

		sliceStart := 0
		for _, g := range groups {
			if g.End < target.Key && g.End+1 > sliceStart {
				sliceStart = g.End + 1
			}
		}
		if sliceStart == anchor.End+1 {
			anchorName = name
			continue
		}

		slice := append([]*syntax.Node(nil), out[sliceStart:target.End+1]...)
		rest := append(append([]*syntax.Node(nil), out[:sliceStart]...), out[target.End+1:]...)
		at := anchor.End + 1
		if anchor.End > target.End {
			at -= len(slice)
		}
		if !endsWithNewline(src, rest[:at]) {
			slice = append([]*syntax.Node{syntax.Fragment("\n")}, slice...)
		}
		if at < len(rest) && !endsWithNewline(src, slice) {
			slice = append(slice, syntax.Fragment("\n"))
		}
		out = append(append(append([]*syntax.Node(nil), rest[:at]...), slice...), rest[at:]...)
		moves = append(moves, Move{Key: name, After: anchorName})
		anchorName = name
	}
	return out, moves
}

// endsWithNewline reports whether the printed nodes end with '\n'. An empty
// run counts as terminated.
func endsWithNewline(src []byte, nodes []*syntax.Node) bool {
	for i := len(nodes) - 1; i >= 0; i-- {
		text := nodes[i].Source(src)
		if text == "" {
			continue
		}
		return text[len(text)-1] == '\n'
	}
	return true
}

// ReorderTop applies order to the top-level groups and commits.
func ReorderTop(doc *document.Document, order []string) ([]Move, error) {
	snap := doc.Snapshot()
	top := snap.Top()
	if top == nil {
		return nil, nil
	}
	children, moves := Reorder(snap.Text, top.Children, order)
	if len(moves) == 0 {
		return nil, nil
	}
	if err := doc.CommitTree(syntax.Replace(snap.Root, top, top.WithChildren(children))); err != nil {
		return nil, fmt.Errorf("reorder top level: %w", err)
	}
	return moves, nil
}

// ReorderNested applies order to the value map of every entry under the
// top-level container group, committing after each entry.
func ReorderNested(doc *document.Document, container string, order []string) ([]Move, error) {
	var moves []Move
	for j := 0; ; j++ {
		snap := doc.Snapshot()
		entries := valueOf(snap, snap.Top(), container)
		if entries == nil || entries.Kind != syntax.KindMap {
			return moves, nil
		}
		groups := snap.Groups(entries)
		if j >= len(groups) {
			return moves, nil
		}
		entry := groups[j]
		if entry.End == entry.Sep {
			continue
		}
		body := entries.Children[entry.End]
		if body.Kind != syntax.KindMap {
			continue
		}
		children, entryMoves := Reorder(snap.Text, body.Children, order)
		if len(entryMoves) == 0 {
			continue
		}
		if err := doc.CommitTree(syntax.Replace(snap.Root, body, body.WithChildren(children))); err != nil {
			return moves, fmt.Errorf("reorder %s: %w", entry.Name, err)
		}
		for _, m := range entryMoves {
			moves = append(moves, Move{Key: entry.Name + "." + m.Key, After: entry.Name + "." + m.After})
		}
	}
}

// valueOf returns the value node of the group named key under m.
func valueOf(snap *document.Snapshot, m *syntax.Node, key string) *syntax.Node {
	if m == nil {
		return nil
	}
	g, ok := snap.Index(m)[key]
	if !ok || g.End == g.Sep {
		return nil
	}
	return m.Children[g.End]
}

// Package document holds the immutable snapshots a formatting pass works on
// and the commit cycle that moves a document from one snapshot to the next.
package document

import (
	"fmt"

	"cfnfmt/internal/syntax"
)

// Snapshot is a text together with the tree parsed from it. Snapshots are
// never modified; node ranges are valid against Text only.
type Snapshot struct {
	Text []byte
	Root *syntax.Node
}

// Top returns the root block mapping, or nil when the body is not a map.
func (s *Snapshot) Top() *syntax.Node {
	return syntax.TopLevel(s.Root)
}

// Source returns the text of a node of this snapshot.
func (s *Snapshot) Source(n *syntax.Node) string {
	return n.Source(s.Text)
}

// Groups indexes the children of a node of this snapshot.
func (s *Snapshot) Groups(n *syntax.Node) []Group {
	if n == nil {
		return nil
	}
	return Groups(s.Text, n.Children)
}

// Index returns the key -> group map over the children of n.
func (s *Snapshot) Index(n *syntax.Node) map[string]Group {
	if n == nil {
		return map[string]Group{}
	}
	return IndexGroups(s.Text, n.Children)
}

// Document owns the current snapshot of one template.
type Document struct {
	cur     *Snapshot
	commits int
}

// Parse builds a document from text.
func Parse(text []byte) (*Document, error) {
	snap, err := parseSnapshot(text)
	if err != nil {
		return nil, err
	}
	return &Document{cur: snap}, nil
}

func parseSnapshot(text []byte) (*Snapshot, error) {
	root, err := syntax.Parse(text)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Text: text, Root: root}, nil
}

// Snapshot returns the current snapshot.
func (d *Document) Snapshot() *Snapshot {
	return d.cur
}

// Bytes returns the text of the current snapshot.
func (d *Document) Bytes() []byte {
	return d.cur.Text
}

// Commits reports how many commits changed the document.
func (d *Document) Commits() int {
	return d.commits
}

// Serialize prints the current tree.
func (d *Document) Serialize() []byte {
	return syntax.Print(d.cur.Text, d.cur.Root)
}

// Settle serializes the current tree and parses the result back.
func (d *Document) Settle() error {
	return d.Commit(d.Serialize())
}

// Commit replaces the document with text. Text that no longer parses leaves
// the document unchanged and returns the parse error.
func (d *Document) Commit(text []byte) error {
	snap, err := parseSnapshot(text)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if string(text) != string(d.cur.Text) {
		d.commits++
	}
	d.cur = snap
	return nil
}

// CommitTree prints a rearranged tree of the current snapshot and commits it.
func (d *Document) CommitTree(root *syntax.Node) error {
	return d.Commit(syntax.Print(d.cur.Text, root))
}

// Apply applies byte edits against the current text and commits the result.
func (d *Document) Apply(edits []TextEdit) error {
	if len(edits) == 0 {
		return nil
	}
	text, err := ApplyEdits(d.cur.Text, edits)
	if err != nil {
		return err
	}
	return d.Commit(text)
}

package testkit

import (
	"strings"
	"testing"

	"cfnfmt/internal/syntax"
)

func TestCheckTreeAcceptsParsedTrees(t *testing.T) {
	for _, src := range []string{
		"",
		"A: 1\nB:\n  - x\n  - y: 2\n    z: 3\n",
		"%YAML 1.1\n--- # doc\nA: 1\n",
		"A:\n  - - 1\n    - 2\n  - [3]\n",
		"A: 1\n...\n",
	} {
		root, err := syntax.Parse([]byte(src))
		if err != nil {
			t.Fatalf("parse %q: %v", src, err)
		}
		if err := CheckTree([]byte(src), root); err != nil {
			t.Errorf("CheckTree(%q): %v", src, err)
		}
	}
}

func TestCheckTreeRejects(t *testing.T) {
	text := []byte("A: 1\n")
	root, err := syntax.Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	tests := []struct {
		name string
		root *syntax.Node
		text []byte
		want string
	}{
		{"nil", nil, text, "nil root"},
		{"not a document", root.Children[0], text, "want document"},
		{"short text", root, []byte("A: 1\nB: 2\n"), "leaves end at"},
		{
			name: "fragment",
			root: &syntax.Node{Kind: syntax.KindDocument, Range: syntax.Range{End: 5}, Children: []*syntax.Node{syntax.Fragment("A: 1\n")}},
			text: text,
			want: "fragment",
		},
		{
			name: "gap",
			root: &syntax.Node{Kind: syntax.KindDocument, Range: syntax.Range{End: 5}, Children: []*syntax.Node{
				{Kind: syntax.KindScalar, Range: syntax.Range{Start: 1, End: 5}},
			}},
			text: text,
			want: "starts at 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTree(tt.text, tt.root)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

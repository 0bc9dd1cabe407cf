package testkit

import (
	"bytes"
	"fmt"

	"cfnfmt/internal/syntax"
)

// CheckTree runs the structural invariants of a tree parsed from text:
// 1) leaves tile text in order, without gaps and without fragments
// 2) every child range lies inside the range of its container
// 3) printing the tree reproduces text byte for byte
func CheckTree(text []byte, root *syntax.Node) error {
	if root == nil {
		return fmt.Errorf("nil root")
	}
	if root.Kind != syntax.KindDocument {
		return fmt.Errorf("root is %s, want document", root.Kind)
	}

	// 1) покрытие листьями
	pos := 0
	var err error
	syntax.Walk(root, func(n *syntax.Node) bool {
		if err != nil {
			return false
		}
		if n.Kind.IsContainer() {
			return true
		}
		switch {
		case n.Kind == syntax.KindFragment:
			err = fmt.Errorf("fragment %q in a parsed tree", n.Text)
		case n.Range.Start != pos:
			err = fmt.Errorf("%s leaf starts at %d, previous leaf ended at %d", n.Kind, n.Range.Start, pos)
		case n.Range.End < n.Range.Start:
			err = fmt.Errorf("%s leaf has inverted range %v", n.Kind, n.Range)
		}
		pos = n.Range.End
		return false
	})
	if err != nil {
		return err
	}
	if pos != len(text) {
		return fmt.Errorf("leaves end at %d, text has %d bytes", pos, len(text))
	}

	// 2) вложенность диапазонов
	if err := checkNested(root); err != nil {
		return err
	}

	// 3) lossless
	if out := syntax.Print(text, root); !bytes.Equal(out, text) {
		return fmt.Errorf("print mismatch:\nwant %q\ngot  %q", text, out)
	}
	return nil
}

func checkNested(n *syntax.Node) error {
	for _, c := range n.Children {
		if c.Range.Start < n.Range.Start || c.Range.End > n.Range.End {
			return fmt.Errorf("%s %v is outside %s %v", c.Kind, c.Range, n.Kind, n.Range)
		}
		if err := checkNested(c); err != nil {
			return err
		}
	}
	return nil
}

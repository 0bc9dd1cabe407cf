package format

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"cfnfmt/internal/document"
	"cfnfmt/internal/syntax"
	"cfnfmt/internal/trace"
)

// DefectKind classifies an indentation mismatch.
type DefectKind uint8

const (
	// DefectMapIndent is a nested block map whose step from its key is wrong.
	DefectMapIndent DefectKind = iota + 1
	// DefectListOffset is a block sequence whose dash column is off from its key.
	DefectListOffset
	// DefectRootIndent is a top-level map that does not start at column 0.
	DefectRootIndent
)

func (k DefectKind) String() string {
	switch k {
	case DefectMapIndent:
		return "map-indent"
	case DefectListOffset:
		return "list-offset"
	case DefectRootIndent:
		return "root-indent"
	default:
		return "unknown"
	}
}

// Defect locates the first indentation mismatch of a snapshot. Range is the
// value span whose lines must move by Want-Have columns.
type Defect struct {
	Kind  DefectKind
	Key   string
	Range syntax.Range
	Have  int
	Want  int
}

// Delta is the column shift that fixes the defect.
func (d Defect) Delta() int { return d.Want - d.Have }

func (d Defect) String() string {
	key := d.Key
	if key == "" {
		key = "<root>"
	}
	return fmt.Sprintf("%s under %s: column %d, want %d", d.Kind, key, d.Have, d.Want)
}

// IndentRules are the parameters of FindDefect. A step or offset below zero
// disables the matching check.
type IndentRules struct {
	Step   int
	Offset int
}

// FindDefect walks the tree in pre-order and returns the first mismatch.
func FindDefect(snap *document.Snapshot, rules IndentRules) (Defect, bool) {
	top := snap.Top()
	if top == nil {
		return Defect{}, false
	}
	if rules.Step > 0 && top.Indent != 0 {
		return Defect{Kind: DefectRootIndent, Range: top.Range, Have: top.Indent, Want: 0}, true
	}
	f := finder{src: snap.Text, rules: rules}
	return f.inMap(top)
}

type finder struct {
	src   []byte
	rules IndentRules
}

func (f *finder) inMap(m *syntax.Node) (Defect, bool) {
	for _, g := range document.Groups(f.src, m.Children) {
		if g.End == g.Sep {
			continue
		}
		v := m.Children[g.End]
		hangs := endsLine(f.src, m.Children[g.Sep])
		if d, ok := f.check(g.Name, m.Indent, v, hangs, true); ok {
			return d, true
		}
		if d, ok := f.descend(v); ok {
			return d, true
		}
	}
	return Defect{}, false
}

func (f *finder) inSeq(s *syntax.Node) (Defect, bool) {
	for _, item := range s.Children {
		if item.Kind != syntax.KindItem || len(item.Children) < 2 {
			continue
		}
		v := item.Children[1]
		hangs := endsLine(f.src, item.Children[0])
		if d, ok := f.check("-", s.Indent, v, hangs, false); ok {
			return d, true
		}
		if d, ok := f.descend(v); ok {
			return d, true
		}
	}
	return Defect{}, false
}

func (f *finder) descend(v *syntax.Node) (Defect, bool) {
	switch v.Kind {
	case syntax.KindMap:
		return f.inMap(v)
	case syntax.KindSeq:
		return f.inSeq(v)
	}
	return Defect{}, false
}

// check inspects a value placed on the lines after its key (or dash) at
// column parent.
func (f *finder) check(key string, parent int, v *syntax.Node, hangs, underKey bool) (Defect, bool) {
	if !hangs {
		return Defect{}, false
	}
	switch {
	case v.Kind == syntax.KindMap && f.rules.Step > 0:
		if want := parent + f.rules.Step; v.Indent != want {
			return Defect{Kind: DefectMapIndent, Key: key, Range: v.Range, Have: v.Indent, Want: want}, true
		}
	case v.Kind == syntax.KindSeq && underKey && f.rules.Offset >= 0:
		if want := parent + f.rules.Offset; v.Indent != want {
			return Defect{Kind: DefectListOffset, Key: key, Range: v.Range, Have: v.Indent, Want: want}, true
		}
	}
	return Defect{}, false
}

// endsLine reports whether an indicator leaf runs to the end of its line,
// which means the value starts on a following line.
func endsLine(src []byte, n *syntax.Node) bool {
	text := n.Source(src)
	return strings.HasSuffix(text, "\n")
}

// ShiftEdits moves every non-empty line starting in r by delta columns.
// Negative shifts only remove leading spaces that are there.
func ShiftEdits(text []byte, r syntax.Range, delta int) []document.TextEdit {
	if delta == 0 {
		return nil
	}
	pad := strings.Repeat(" ", max(delta, 0))
	var edits []document.TextEdit
	for start := r.Start; start < r.End; {
		lineEnd, next := r.End, r.End
		if i := bytes.IndexByte(text[start:r.End], '\n'); i >= 0 {
			lineEnd = start + i
			next = lineEnd + 1
		}
		if lineEnd > start {
			if delta > 0 {
				edits = append(edits, document.Insert(start, pad))
			} else {
				n := 0
				for n < -delta && start+n < lineEnd && text[start+n] == ' ' {
					n++
				}
				if n > 0 {
					edits = append(edits, document.TextEdit{Start: start, End: start + n, OldText: strings.Repeat(" ", n)})
				}
			}
		}
		start = next
	}
	return edits
}

// NormalizeIndent fixes one defect at a time, committing and restarting the
// walk after each fix, until no defect is left. It returns the number of
// fixes applied, or a *NonConvergenceError once maxPasses fixes did not
// reach a fixed point.
func NormalizeIndent(ctx context.Context, doc *document.Document, rules IndentRules, maxPasses int) (int, error) {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	for pass := 0; ; pass++ {
		if err := ctx.Err(); err != nil {
			return pass, err
		}
		d, found := FindDefect(doc.Snapshot(), rules)
		if !found {
			return pass, nil
		}
		if pass >= maxPasses {
			return pass, &NonConvergenceError{Passes: pass, Last: d}
		}
		trace.Point(tracer, trace.ScopeNode, "indent.fix", d.String(), parent)
		if err := doc.Apply(ShiftEdits(doc.Bytes(), d.Range, d.Delta())); err != nil {
			return pass, fmt.Errorf("indent %s: %w", d, err)
		}
	}
}

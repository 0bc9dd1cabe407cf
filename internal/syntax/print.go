package syntax

// Writer accumulates printed output by copying source ranges and literal text.
type Writer struct {
	src []byte
	buf []byte
}

// NewWriter creates a writer over the text the printed tree was parsed from.
func NewWriter(src []byte) *Writer {
	return &Writer{
		src: src,
		buf: make([]byte, 0, len(src)),
	}
}

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteString appends literal text.
func (w *Writer) WriteString(s string) {
	w.buf = append(w.buf, s...)
}

// CopyRange copies a range of bytes from the source text to the output.
func (w *Writer) CopyRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(w.src) {
		end = len(w.src)
	}
	if start >= end {
		return
	}
	w.buf = append(w.buf, w.src[start:end]...)
}

// WriteNode prints n and all its descendants in document order.
func (w *Writer) WriteNode(n *Node) {
	if n == nil {
		return
	}
	switch {
	case n.Kind == KindFragment:
		w.WriteString(n.Text)
	case n.Kind.IsContainer():
		for _, c := range n.Children {
			w.WriteNode(c)
		}
	default:
		w.CopyRange(n.Range.Start, n.Range.End)
	}
}

// Print serializes a tree parsed from src, possibly rearranged since.
func Print(src []byte, root *Node) []byte {
	w := NewWriter(src)
	w.WriteNode(root)
	return w.Bytes()
}

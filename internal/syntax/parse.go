package syntax

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// Parse builds a CST over src. Malformed YAML and multi-document streams are
// reported as *ParseError. The returned tree always prints back to src.
func Parse(src []byte) (*Node, error) {
	body, err := decode(src)
	if err != nil {
		return nil, err
	}
	b := newBuilder(src)
	if body != nil {
		b.markLiterals(body)
	}
	root := b.document(body)
	if !covers(root, len(src)) {
		// раскладка не сошлась: весь документ становится одним листом
		root = &Node{Kind: KindDocument, Range: Range{End: len(src)}}
		if len(src) > 0 {
			root.Children = []*Node{b.opaque(0, len(src))}
		}
	}
	return root, nil
}

// TopLevel returns the root block mapping of a document, or nil when the
// document body is something else.
func TopLevel(root *Node) *Node {
	if root == nil {
		return nil
	}
	for _, c := range root.Children {
		if c.Kind == KindMap {
			return c
		}
	}
	return nil
}

func decode(src []byte) (*yaml.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, newParseError(err)
	}
	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
	case err != nil:
		return nil, newParseError(err)
	default:
		return nil, &ParseError{Line: extra.Line, Column: extra.Column, Msg: "multiple documents in one stream are not supported"}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	return doc.Content[0], nil
}

type builder struct {
	src     []byte
	lt      *lineTable
	literal []bool // line belongs to a block scalar body
}

func newBuilder(src []byte) *builder {
	lt := newLineTable(src)
	return &builder{
		src:     src,
		lt:      lt,
		literal: make([]bool, len(lt.lines)),
	}
}

// layout is the result of placing a value after its indicator.
type layout struct {
	sepEnd int   // end of the separator or indicator leaf
	node   *Node // nil for an empty value
}

func (b *builder) document(body *yaml.Node) *Node {
	n := len(b.src)
	doc := &Node{Kind: KindDocument, Range: Range{End: n}}
	start, end := 0, n
	if ms, ok := b.startMarker(); ok {
		if ms < 0 {
			doc.Children = []*Node{b.opaque(0, n)}
			return doc
		}
		doc.Children = append(doc.Children, &Node{Kind: KindMarker, Range: Range{End: ms}})
		start = ms
	}
	var tail *Node
	if me, ok := b.endMarker(start); ok {
		tail = &Node{Kind: KindMarker, Range: Range{Start: me, End: n}}
		end = me
	}
	switch {
	case start >= end:
	case body != nil && isBlockCollection(body):
		if c, ok := b.collection(body, start, end); ok {
			doc.Children = append(doc.Children, c)
		} else {
			doc.Children = append(doc.Children, b.opaque(start, end))
		}
	case b.allTrivia(start, end):
		doc.Children = append(doc.Children, b.triviaLeaves(start, end)...)
	default:
		doc.Children = append(doc.Children, b.opaque(start, end))
	}
	if tail != nil {
		doc.Children = append(doc.Children, tail)
	}
	return doc
}

// startMarker finds the "---" line that opens the document. A negative offset
// means the marker carries content on its own line.
func (b *builder) startMarker() (int, bool) {
	for li, l := range b.lt.lines {
		if b.trivia(li) {
			continue
		}
		body := b.src[l.start+l.indent : l.end]
		if len(body) > 0 && body[0] == '%' && l.indent == 0 {
			continue
		}
		if l.indent != 0 || !bytes.HasPrefix(body, []byte("---")) {
			return 0, false
		}
		if len(body) > 3 && body[3] != ' ' && body[3] != '\t' && body[3] != '\r' {
			return 0, false
		}
		rest := bytes.TrimSpace(body[3:])
		if len(rest) == 0 || rest[0] == '#' {
			return l.next, true
		}
		return -1, true
	}
	return 0, false
}

// endMarker finds a trailing "..." line at or after from.
func (b *builder) endMarker(from int) (int, bool) {
	for li := len(b.lt.lines) - 1; li >= 0 && b.lt.lines[li].start >= from; li-- {
		if b.trivia(li) {
			continue
		}
		l := b.lt.lines[li]
		body := b.src[l.start:l.end]
		if !bytes.HasPrefix(body, []byte("...")) {
			return 0, false
		}
		rest := bytes.TrimSpace(body[3:])
		if len(rest) == 0 || rest[0] == '#' {
			return l.start, true
		}
		return 0, false
	}
	return 0, false
}

func (b *builder) allTrivia(from, to int) bool {
	for li := b.lt.lineOf(from); li < len(b.lt.lines) && b.lt.lines[li].start < to; li++ {
		if !b.trivia(li) {
			return false
		}
	}
	return true
}

func (b *builder) opaque(start, end int) *Node {
	indent := b.lt.column(start)
	if len(b.lt.lines) > 0 {
		if l := b.lt.lines[b.lt.lineOf(start)]; l.start == start {
			indent = l.indent
		}
	}
	return &Node{Kind: KindScalar, Range: Range{Start: start, End: end}, Indent: indent}
}

func (b *builder) collection(v *yaml.Node, start, end int) (*Node, bool) {
	switch v.Kind {
	case yaml.MappingNode:
		return b.buildMap(v, start, end)
	case yaml.SequenceNode:
		return b.buildSeq(v, start, end)
	}
	return nil, false
}

// buildMap lays out a block mapping over [start, end). start is either a line
// start or, for a map nested in a sequence item, the offset of its first key.
func (b *builder) buildMap(v *yaml.Node, start, end int) (*Node, bool) {
	if v.Kind != yaml.MappingNode || !isBlock(v) || len(v.Content) == 0 || len(v.Content)%2 != 0 {
		return nil, false
	}
	count := len(v.Content) / 2
	keys := make([]int, count)
	for i := range count {
		k := v.Content[2*i]
		if k.Kind != yaml.ScalarNode {
			return nil, false
		}
		off, ok := b.lt.offset(k.Line, k.Column)
		if !ok || off < start || off >= end {
			return nil, false
		}
		if i > 0 && off <= keys[i-1] {
			return nil, false
		}
		if !b.lt.ownLine(off) && (i > 0 || off != start) {
			return nil, false
		}
		keys[i] = off
	}

	m := &Node{Kind: KindMap, Range: Range{Start: start, End: end}, Indent: b.lt.column(keys[0])}
	pos := start
	for i, off := range keys {
		leafStart := off
		if b.lt.ownLine(off) {
			leafStart = b.lt.lineStart(off)
		}
		if leafStart < pos {
			return nil, false
		}
		m.Children = append(m.Children, b.triviaLeaves(pos, leafStart)...)

		groupEnd := end
		if i+1 < count {
			groupEnd = b.lt.lineStart(keys[i+1])
		}
		li := b.lt.lineOf(off)
		contentEnd := b.contentEnd(li, groupEnd)
		colon, ok := b.scanKey(off, b.lt.lines[li].end)
		if !ok {
			return nil, false
		}
		m.Children = append(m.Children, &Node{
			Kind:   KindKey,
			Range:  Range{Start: leafStart, End: colon},
			Indent: b.lt.column(off),
		})
		lay := b.value(v.Content[2*i+1], li, colon+1, contentEnd)
		m.Children = append(m.Children, &Node{Kind: KindSeparator, Range: Range{Start: colon, End: lay.sepEnd}})
		if lay.node != nil {
			m.Children = append(m.Children, lay.node)
		}
		pos = contentEnd
	}
	m.Children = append(m.Children, b.triviaLeaves(pos, end)...)
	return m, true
}

// buildSeq lays out a block sequence over [start, end); start is a line start.
func (b *builder) buildSeq(v *yaml.Node, start, end int) (*Node, bool) {
	if v.Kind != yaml.SequenceNode || !isBlock(v) || len(v.Content) == 0 {
		return nil, false
	}
	col := -1
	var dashes []int
	for li := b.lt.lineOf(start); li < len(b.lt.lines) && b.lt.lines[li].start < end; li++ {
		if b.trivia(li) || b.literal[li] {
			continue
		}
		l := b.lt.lines[li]
		dash := b.isDash(l.start+l.indent, l.end)
		if col < 0 {
			if !dash {
				return nil, false
			}
			col = l.indent
		}
		switch {
		case l.indent < col:
			return nil, false
		case l.indent == col && dash:
			dashes = append(dashes, l.start+col)
		}
	}
	if len(dashes) != len(v.Content) {
		return nil, false
	}

	s := &Node{Kind: KindSeq, Range: Range{Start: start, End: end}, Indent: col}
	pos := start
	for i, dash := range dashes {
		ls := b.lt.lineStart(dash)
		s.Children = append(s.Children, b.triviaLeaves(pos, ls)...)
		itemEnd := end
		if i+1 < len(dashes) {
			itemEnd = b.lt.lineStart(dashes[i+1])
		}
		li := b.lt.lineOf(dash)
		contentEnd := b.contentEnd(li, itemEnd)
		lay := b.value(v.Content[i], li, dash+1, contentEnd)
		item := &Node{Kind: KindItem, Range: Range{Start: ls, End: contentEnd}, Indent: col}
		item.Children = append(item.Children, &Node{Kind: KindIndicator, Range: Range{Start: ls, End: lay.sepEnd}, Indent: col})
		if lay.node != nil {
			item.Children = append(item.Children, lay.node)
		}
		s.Children = append(s.Children, item)
		pos = contentEnd
	}
	s.Children = append(s.Children, b.triviaLeaves(pos, end)...)
	return s, true
}

// value places v, whose indicator (':' or '-') ends at after on line li,
// within [after, end).
func (b *builder) value(v *yaml.Node, li, after, end int) layout {
	l := b.lt.lines[li]
	p := skipBlanks(b.src, after, l.end)
	rest := b.src[p:l.end]
	nextLine := min(l.next, end)
	hangs := isBlockCollection(v) && v.Content[0].Line-1 > li

	if p == l.end || rest[0] == '#' || (hangs && propsOnly(rest)) {
		lay := layout{sepEnd: nextLine}
		if nextLine >= end {
			return lay
		}
		if hangs {
			if n, ok := b.collection(v, nextLine, end); ok {
				lay.node = n
				return lay
			}
		}
		lay.node = b.opaque(nextLine, end)
		return lay
	}

	// "- Key: value": компактная мапа внутри элемента списка
	if v.Kind == yaml.MappingNode && isBlockCollection(v) {
		first := v.Content[0]
		if off, ok := b.lt.offset(first.Line, first.Column); ok && off == p {
			if n, ok := b.buildMap(v, p, end); ok {
				return layout{sepEnd: p, node: n}
			}
		}
	}
	return layout{sepEnd: p, node: b.opaque(p, end)}
}

// scanKey returns the offset of the ':' that terminates the key starting at off.
func (b *builder) scanKey(off, end int) (int, bool) {
	src := b.src
	i := off
	for i < end && (src[i] == '&' || src[i] == '!') {
		for i < end && src[i] != ' ' && src[i] != '\t' {
			i++
		}
		i = skipBlanks(src, i, end)
	}
	if i >= end {
		return 0, false
	}
	switch src[i] {
	case '?':
		return 0, false
	case '"':
		i++
		for i < end && src[i] != '"' {
			if src[i] == '\\' {
				i++
			}
			i++
		}
		if i >= end {
			return 0, false
		}
		i++
	case '\'':
		i++
		for i < end {
			if src[i] == '\'' {
				if i+1 < end && src[i+1] == '\'' {
					i += 2
					continue
				}
				break
			}
			i++
		}
		if i >= end {
			return 0, false
		}
		i++
	}
	for ; i < end; i++ {
		if src[i] != ':' {
			continue
		}
		if i+1 == end || src[i+1] == ' ' || src[i+1] == '\t' || src[i+1] == '\r' {
			return i, true
		}
	}
	return 0, false
}

func (b *builder) isDash(off, end int) bool {
	if off >= end || b.src[off] != '-' {
		return false
	}
	return off+1 == end || b.src[off+1] == ' ' || b.src[off+1] == '\t' || b.src[off+1] == '\r'
}

// markLiterals flags the body lines of literal and folded block scalars so
// that '#' lines inside them are not taken for comments.
func (b *builder) markLiterals(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if isBlockScalar(v) {
				b.markBlockScalar(v, k.Column-1)
			}
			b.markLiterals(v)
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if isBlockScalar(item) {
				if off, ok := b.lt.offset(item.Line, item.Column); ok {
					b.markBlockScalar(item, b.dashColumn(off))
				}
			}
			b.markLiterals(item)
		}
	}
}

func (b *builder) markBlockScalar(v *yaml.Node, owner int) {
	for li := v.Line; li < len(b.lt.lines); li++ {
		l := b.lt.lines[li]
		if l.blank {
			continue
		}
		if l.indent <= owner {
			return
		}
		b.literal[li] = true
	}
}

func (b *builder) dashColumn(off int) int {
	ls := b.lt.lineStart(off)
	i := off
	for i > ls && b.src[i-1] == ' ' {
		i--
	}
	if i > ls && b.src[i-1] == '-' {
		return i - 1 - ls
	}
	return max(off-ls-1, 0)
}

func isBlock(v *yaml.Node) bool {
	return v.Style&yaml.FlowStyle == 0
}

func isBlockCollection(v *yaml.Node) bool {
	return (v.Kind == yaml.MappingNode || v.Kind == yaml.SequenceNode) && isBlock(v) && len(v.Content) > 0
}

func isBlockScalar(v *yaml.Node) bool {
	return v.Kind == yaml.ScalarNode && v.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0
}

// propsOnly reports whether rest holds only node properties (tags, anchors)
// and an optional comment.
func propsOnly(rest []byte) bool {
	fields := bytes.Fields(rest)
	if len(fields) == 0 {
		return false
	}
	for i, f := range fields {
		if f[0] == '#' {
			return i > 0
		}
		if f[0] != '!' && f[0] != '&' {
			return false
		}
	}
	return true
}

// covers reports whether the leaves of root tile [0, n) in order.
func covers(root *Node, n int) bool {
	pos := 0
	ok := true
	Walk(root, func(c *Node) bool {
		if !ok {
			return false
		}
		if c.Kind.IsContainer() {
			return true
		}
		if c.Kind == KindFragment || c.Range.Start != pos || c.Range.End < c.Range.Start {
			ok = false
			return false
		}
		pos = c.Range.End
		return false
	})
	return ok && pos == n
}

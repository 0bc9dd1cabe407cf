package syntax

import (
	"bytes"
	"sort"
	"unicode/utf8"
)

// line describes one physical line of the input.
type line struct {
	start   int // first byte
	end     int // offset of '\n', or len(src) for an unterminated last line
	next    int // first byte of the following line
	indent  int // leading spaces
	blank   bool
	comment bool // first significant character is '#'
}

type lineTable struct {
	src   []byte
	lines []line
}

func newLineTable(src []byte) *lineTable {
	t := &lineTable{src: src}
	for start := 0; start < len(src); {
		end := bytes.IndexByte(src[start:], '\n')
		next := len(src)
		if end < 0 {
			end = len(src)
		} else {
			end += start
			next = end + 1
		}
		body := src[start:end]
		l := line{start: start, end: end, next: next}
		for l.indent < len(body) && body[l.indent] == ' ' {
			l.indent++
		}
		trimmed := bytes.TrimLeft(body, " \t")
		l.blank = len(bytes.TrimSpace(trimmed)) == 0
		l.comment = !l.blank && trimmed[0] == '#'
		t.lines = append(t.lines, l)
		start = next
	}
	return t
}

// lineOf returns the index of the line containing off. Offsets at the very
// end of the text map to the last line.
func (t *lineTable) lineOf(off int) int {
	i := sort.Search(len(t.lines), func(i int) bool { return t.lines[i].start > off })
	if i == 0 {
		return 0
	}
	return i - 1
}

// lineStart returns the first byte of the line containing off.
func (t *lineTable) lineStart(off int) int {
	if len(t.lines) == 0 {
		return 0
	}
	return t.lines[t.lineOf(off)].start
}

// column returns the byte column of off within its line.
func (t *lineTable) column(off int) int {
	return off - t.lineStart(off)
}

// offset converts a yaml.v3 position (1-based line, 1-based rune column)
// into a byte offset.
func (t *lineTable) offset(lineNo, col int) (int, bool) {
	if lineNo < 1 || lineNo > len(t.lines) || col < 1 {
		return 0, false
	}
	l := t.lines[lineNo-1]
	off := l.start
	for i := 1; i < col; i++ {
		if off >= l.end {
			return 0, false
		}
		_, size := utf8.DecodeRune(t.src[off:l.end])
		off += size
	}
	return off, true
}

// ownLine reports whether only spaces precede off on its line.
func (t *lineTable) ownLine(off int) bool {
	for i := t.lineStart(off); i < off; i++ {
		if t.src[i] != ' ' {
			return false
		}
	}
	return true
}

// trivia reports whether the line is blank or a comment outside a block scalar.
func (b *builder) trivia(li int) bool {
	l := b.lt.lines[li]
	return l.blank || (l.comment && !b.literal[li])
}

// triviaLeaves splits [from, to) into one leaf per line.
func (b *builder) triviaLeaves(from, to int) []*Node {
	var out []*Node
	for li := b.lt.lineOf(from); from < to && li < len(b.lt.lines); li++ {
		l := b.lt.lines[li]
		end := min(l.next, to)
		kind := KindComment
		switch {
		case l.blank:
			kind = KindBlank
		case !l.comment:
			kind = KindScalar
		}
		out = append(out, &Node{Kind: kind, Range: Range{Start: from, End: end}, Indent: l.indent})
		from = end
	}
	return out
}

// contentEnd returns the end of the last non-trivia line in [lines[first].start, limit).
// The first line always counts as content.
func (b *builder) contentEnd(first, limit int) int {
	last := first
	for li := first + 1; li < len(b.lt.lines) && b.lt.lines[li].start < limit; li++ {
		if !b.trivia(li) {
			last = li
		}
	}
	return min(b.lt.lines[last].next, limit)
}

func skipBlanks(src []byte, from, to int) int {
	for from < to && (src[from] == ' ' || src[from] == '\t') {
		from++
	}
	return from
}

package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"cfnfmt/internal/diag"
	"cfnfmt/internal/source"
)

type palette struct {
	err, warn, info, note, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgGreen, color.Bold),
		gutter: color.New(color.FgBlue, color.Bold),
		caret:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
//
//	<sev>[<CODE>]: <message>
//	  --> <path>:<line>:<col>
//
// затем строки исходника с подчёркиванием ^ под позицией, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	if bag == nil || fs == nil {
		return nil
	}
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := writeDiagnostic(w, &d, fs, opts, p); err != nil {
			return err
		}
	}
	return nil
}

func writeDiagnostic(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", p.severity(d.Severity).Sprintf("%s[%s]", d.Severity, d.Code.ID()), d.Message)
	writeSnippet(&b, d.Primary, fs, opts, p)
	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(&b, "%s: %s\n", p.note.Sprint("note"), n.Msg)
			writeSnippet(&b, n.Span, fs, opts, p)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeSnippet(b *strings.Builder, span source.Span, fs *source.FileSet, opts PrettyOpts, p palette) {
	file := fs.Get(span.File)
	if file == nil {
		return
	}
	if int(span.Start) > len(file.Content) {
		span.Start = 0
	}
	start, _ := fs.Resolve(source.Span{File: span.File, Start: span.Start, End: span.Start})
	path := file.FormatPath(opts.PathMode.String(), fs.BaseDir())
	fmt.Fprintf(b, "  %s %s:%d:%d\n", p.gutter.Sprint("-->"), path, start.Line, start.Col)
	if len(file.Content) == 0 {
		return
	}

	ctxLines := uint32(max(opts.Context, 0))
	first := start.Line - min(start.Line-1, ctxLines)
	last := min(start.Line+ctxLines, max(lineCount(file), start.Line))
	width := len(strconv.FormatUint(uint64(last), 10))
	pad := strings.Repeat(" ", width)
	fmt.Fprintf(b, "%s %s\n", pad, p.gutter.Sprint("|"))
	for ln := first; ln <= last; ln++ {
		text := file.GetLine(ln)
		num := fmt.Sprintf("%*d", width, ln)
		fmt.Fprintf(b, "%s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), expandTabs(text))
		if ln == start.Line {
			col := caretColumn(text, start.Col)
			fmt.Fprintf(b, "%s %s %s%s\n", pad, p.gutter.Sprint("|"), strings.Repeat(" ", col), p.caret.Sprint("^"))
		}
	}
}

// lineCount is the number of lines of file, not counting the empty tail
// after a final newline.
func lineCount(file *source.File) uint32 {
	n := len(file.LineIdx)
	if len(file.Content) > 0 && file.Content[len(file.Content)-1] != '\n' {
		n++
	}
	return uint32(n)
}

// caretColumn converts a 1-based byte column into the display offset of the
// line printed by expandTabs.
func caretColumn(line string, col uint32) int {
	limit := min(int(col)-1, len(line))
	if limit < 0 {
		limit = 0
	}
	return len([]rune(expandTabs(line[:limit])))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

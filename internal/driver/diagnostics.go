package driver

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"cfnfmt/internal/diag"
	"cfnfmt/internal/format"
	"cfnfmt/internal/source"
	"cfnfmt/internal/syntax"
)

// fileDiagnostic converts a per-file failure into a diagnostic located in f.
// ok is false for errors that are not about the file (cancellation).
func fileDiagnostic(f *source.File, err error, writePartial bool) (diag.Diagnostic, bool) {
	at := source.Span{File: f.ID}

	var perr *syntax.ParseError
	if errors.As(err, &perr) {
		off := f.Offset(lineCol(perr.Line, perr.Column))
		at.Start, at.End = off, off
		return diag.NewError(diag.YmlInvalid, at, perr.Msg), true
	}

	var nc *format.NonConvergenceError
	if errors.As(err, &nc) {
		value, ok := rangeSpan(f, nc.Last.Range)
		if ok {
			at.Start, at.End = value.Start, value.Start
		}
		msg := nc.Error()
		if !writePartial {
			msg += "; file left unchanged"
		}
		d := diag.NewError(diag.FmtNonConvergence, at, msg)
		if ok && !value.Empty() {
			d = d.WithNote(value, fmt.Sprintf("this block is still at column %d, want %d", nc.Last.Have, nc.Last.Want))
		}
		return d, true
	}

	if errors.Is(err, errWrite) {
		return diag.NewError(diag.IOWriteFailed, at, err.Error()), true
	}
	if errors.Is(err, errLoad) {
		return diag.NewError(diag.IOLoadFailed, at, err.Error()), true
	}
	return diag.Diagnostic{}, false
}

// rangeSpan converts a defect range of the formatted text into a span of f.
func rangeSpan(f *source.File, r syntax.Range) (source.Span, bool) {
	start, err := safecast.Conv[uint32](r.Start)
	if err != nil {
		return source.Span{}, false
	}
	end, err := safecast.Conv[uint32](r.End)
	if err != nil || end < start {
		return source.Span{}, false
	}
	return source.Span{File: f.ID, Start: start, End: end}, true
}

func lineCol(line, col int) source.LineCol {
	l, err := safecast.Conv[uint32](line)
	if err != nil {
		l = 0
	}
	c, err := safecast.Conv[uint32](col)
	if err != nil {
		c = 0
	}
	return source.LineCol{Line: l, Col: c}
}

func skippedDiagnostic(f *source.File, anchor string) diag.Diagnostic {
	return diag.New(diag.SevInfo, diag.FmtNotApplicable, source.Span{File: f.ID}, "no "+anchor+" section, left unchanged")
}

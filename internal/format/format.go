package format

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"cfnfmt/internal/document"
	"cfnfmt/internal/observ"
	"cfnfmt/internal/trace"
)

// Result describes one formatted template.
type Result struct {
	// Output is the formatted text. On error it holds the last committed
	// text, or the input when nothing was committed.
	Output []byte
	// Changed reports whether Output differs from the input.
	Changed bool
	// Skipped is set when the anchor key is missing and no pass ran.
	Skipped bool
	// Moves lists the group relocations of both reorder passes.
	Moves []Move
	// IndentFixes counts the indentation rewrites.
	IndentFixes int
	// Timings holds per-stage durations.
	Timings observ.Report
}

type stage struct {
	name    string
	enabled bool
	run     func(ctx context.Context, doc *document.Document, res *Result) (string, error)
}

// FormatFile runs the template pipeline over src: anchor gate, optional
// non-ASCII stripping, default key, top-level reorder, nested reorder,
// indentation and trailing newlines. Stages run in that order and each
// commits before the next one starts.
func FormatFile(ctx context.Context, src []byte, opts Options) (Result, error) {
	opts = opts.withDefaults()
	res := Result{Output: src}
	if err := opts.Validate(); err != nil {
		return res, err
	}

	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	timer := observ.NewTimer()

	idx := timer.Begin("parse")
	doc, err := document.Parse(src)
	timer.End(idx, "")
	if err != nil {
		res.Timings = timer.Report()
		return res, err
	}

	snap := doc.Snapshot()
	if _, ok := snap.Index(snap.Top())[opts.AnchorKey]; !ok {
		trace.Point(tracer, trace.ScopePass, "gate", "missing "+opts.AnchorKey, parent)
		res.Skipped = true
		res.Timings = timer.Report()
		return res, nil
	}

	stages := []stage{
		{"strip-non-ascii", opts.StripNonASCII, func(_ context.Context, doc *document.Document, _ *Result) (string, error) {
			text, err := StripNonASCII(doc.Bytes())
			if err != nil {
				return "", err
			}
			removed := len(doc.Bytes()) - len(text)
			if removed == 0 {
				return "", nil
			}
			return fmt.Sprintf("%d bytes removed", removed), doc.Commit(text)
		}},
		{"ensure-key", opts.EnsureVersion, func(_ context.Context, doc *document.Document, _ *Result) (string, error) {
			inserted, err := EnsureKey(doc, opts.VersionKey, opts.VersionValue)
			if inserted {
				return "inserted " + opts.VersionKey, err
			}
			return "", err
		}},
		{"reorder", len(opts.SectionOrder) > 0, func(_ context.Context, doc *document.Document, res *Result) (string, error) {
			moves, err := ReorderTop(doc, opts.SectionOrder)
			res.Moves = append(res.Moves, moves...)
			return movesNote(moves), err
		}},
		{"reorder-nested", len(opts.ResourceOrder) > 0, func(_ context.Context, doc *document.Document, res *Result) (string, error) {
			moves, err := ReorderNested(doc, opts.ContainerKey, opts.ResourceOrder)
			res.Moves = append(res.Moves, moves...)
			return movesNote(moves), err
		}},
		{"indent", opts.indentEnabled() || opts.listOffsetEnabled(), func(ctx context.Context, doc *document.Document, res *Result) (string, error) {
			rules := opts.indentRules()
			fixes, err := NormalizeIndent(ctx, doc, rules, opts.MaxIndentPasses)
			res.IndentFixes = fixes
			if fixes == 0 {
				return "", err
			}
			return strconv.Itoa(fixes) + " fixes", err
		}},
		{"newlines", opts.EnforceNewLines, func(_ context.Context, doc *document.Document, _ *Result) (string, error) {
			return "", doc.Commit(TrailingNewlines(doc.Bytes(), opts.NewLines))
		}},
	}

	for _, st := range stages {
		if !st.enabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			res = finish(res, src, doc)
			res.Timings = timer.Report()
			return res, err
		}
		idx := timer.Begin(st.name)
		span := trace.Begin(tracer, trace.ScopePass, st.name, parent)
		note, err := st.run(trace.WithSpan(ctx, span), doc, &res)
		span.End(note)
		timer.End(idx, note)
		if err != nil {
			res = finish(res, src, doc)
			res.Timings = timer.Report()
			return res, err
		}
	}
	res = finish(res, src, doc)
	res.Timings = timer.Report()
	return res, nil
}

func finish(res Result, src []byte, doc *document.Document) Result {
	res.Output = doc.Bytes()
	res.Changed = !bytes.Equal(res.Output, src)
	return res
}

func movesNote(moves []Move) string {
	switch len(moves) {
	case 0:
		return ""
	case 1:
		return "1 move"
	default:
		return strconv.Itoa(len(moves)) + " moves"
	}
}

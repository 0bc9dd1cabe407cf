package diag

import (
	"testing"

	"cfnfmt/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	tpl := fs.Add("/workspace/stacks/app.yaml", []byte("Resources:\n  A: [\n"), 0)
	other := fs.Add("/workspace/stacks/net.yaml", []byte("x\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevWarning,
			Code:     FmtNonConvergence,
			Message:  "indentation under\nBucket",
			Primary:  source.Span{File: other, Start: 0, End: 0},
		},
		{
			Severity: SevError,
			Code:     YmlInvalid,
			Message:  "did not find expected node content",
			Primary:  source.Span{File: tpl, Start: 16, End: 16},
			Notes: []Note{
				{Span: source.Span{File: tpl, Start: 0, End: 9}, Msg: "in this section"},
			},
		},
	}

	want := "note YML2001 stacks/app.yaml:1:1 in this section\n" +
		"error YML2001 stacks/app.yaml:2:6 did not find expected node content\n" +
		"warning FMT3001 stacks/net.yaml:1:1 indentation under Bucket"
	if got := FormatShortDiagnostics(diags, fs, true); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}

	noNotes := "error YML2001 stacks/app.yaml:2:6 did not find expected node content\n" +
		"warning FMT3001 stacks/net.yaml:1:1 indentation under Bucket"
	if got := FormatShortDiagnostics(diags, fs, false); got != noNotes {
		t.Fatalf("unexpected output without notes:\n%s", got)
	}
}

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		YmlInvalid:         "YML2001",
		FmtNonConvergence:  "FMT3001",
		FmtNotApplicable:   "FMT3002",
		IOLoadFailed:       "IO4001",
		IOUnsupportedInput: "IO4002",
		CfgInvalid:         "CFG5001",
		UnknownCode:        "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d: want %s got %s", code, want, got)
		}
	}
	if Code(9999).Title() != UnknownCode.Title() {
		t.Errorf("unknown codes should share the fallback title")
	}
}

func TestBag(t *testing.T) {
	b := NewBag(2)
	if !b.Add(New(SevInfo, FmtNotApplicable, source.Span{File: 1}, "skipped")) {
		t.Fatal("first add rejected")
	}
	b.Add(NewError(YmlInvalid, source.Span{File: 0, Start: 4}, "bad"))
	if b.Add(NewError(IOLoadFailed, source.Span{}, "over the limit")) {
		t.Fatal("limit not enforced")
	}
	if !b.HasErrors() || b.Len() != 2 {
		t.Fatalf("len=%d errors=%v", b.Len(), b.HasErrors())
	}
	b.Sort()
	if b.Items()[0].Code != YmlInvalid {
		t.Fatalf("sort by file failed: %v", b.Items()[0].Code)
	}

	other := NewBag(0)
	BagReporter{Bag: other}.Report(NewError(CfgInvalid, source.Span{}, "x"))
	b.Merge(other)
	if b.Len() != 3 || len(b.Pointers()) != 3 {
		t.Fatalf("merge ignored items: %d", b.Len())
	}
}

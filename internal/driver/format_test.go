package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"cfnfmt/internal/diag"
	"cfnfmt/internal/format"
)

const unsorted = "Resources:\n  Bucket:\n    Type: AWS::S3::Bucket\nDescription: demo\n"

const sorted = "AWSTemplateFormatVersion: '2010-09-09'\nDescription: demo\nResources:\n  Bucket:\n    Type: AWS::S3::Bucket\n"

func defaultRun() FormatOptions {
	return FormatOptions{
		Options:  format.DefaultOptions(),
		Patterns: []string{"*.yaml", "*.yml", "*.template"},
		Jobs:     2,
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func codes(r FormatResult) []diag.Code {
	var out []diag.Code
	for _, d := range r.Bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestFormatPathsWritesChangedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.yaml": unsorted,
		"b.yml":  sorted,
	})

	fs, results, err := FormatPaths(context.Background(), []string{dir}, defaultRun())
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if len(results) != 2 || fs.Len() != 2 {
		t.Fatalf("want 2 results, got %d", len(results))
	}
	a, b := results[0], results[1]
	if !a.Changed || !a.Written || a.Moves == 0 {
		t.Fatalf("a.yaml: %+v", a)
	}
	if b.Changed || b.Written {
		t.Fatalf("b.yml should be untouched: %+v", b)
	}
	if got := readFile(t, filepath.Join(dir, "a.yaml")); got != sorted {
		t.Fatalf("a.yaml on disk:\n%s", got)
	}
	if len(a.Timings.Phases) == 0 {
		t.Fatalf("missing timings")
	}
}

func TestFormatPathsRestoresEncoding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.yaml")
	in := "\xEF\xBB\xBFResources: {}\r\nDescription: x\r\n"
	if err := os.WriteFile(path, []byte(in), 0o640); err != nil {
		t.Fatal(err)
	}
	if _, _, err := FormatPaths(context.Background(), []string{path}, defaultRun()); err != nil {
		t.Fatalf("format: %v", err)
	}
	want := "\xEF\xBB\xBFAWSTemplateFormatVersion: '2010-09-09'\r\nDescription: x\r\nResources: {}\r\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("want %q\ngot  %q", want, got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Fatalf("mode changed to %v", info.Mode().Perm())
	}
}

func TestFormatPathsModesDoNotWrite(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*FormatOptions)
		check func(t *testing.T, r FormatResult)
	}{
		{"check", func(o *FormatOptions) { o.Check = true }, func(t *testing.T, r FormatResult) {
			if !r.Changed || r.Written {
				t.Fatalf("check result %+v", r)
			}
		}},
		{"stdout", func(o *FormatOptions) { o.Stdout = true }, func(t *testing.T, r FormatResult) {
			if string(r.Formatted) != sorted {
				t.Fatalf("stdout content %q", r.Formatted)
			}
		}},
		{"diff", func(o *FormatOptions) { o.Diff = true }, func(t *testing.T, r FormatResult) {
			if !strings.Contains(r.Diff, "+AWSTemplateFormatVersion: '2010-09-09'\n") ||
				!strings.Contains(r.Diff, "-Description: demo\n") {
				t.Fatalf("diff:\n%s", r.Diff)
			}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "t.yaml")
			writeFiles(t, dir, map[string]string{"t.yaml": unsorted})
			opts := defaultRun()
			tc.setup(&opts)
			_, results, err := FormatPaths(context.Background(), []string{path}, opts)
			if err != nil {
				t.Fatalf("format: %v", err)
			}
			tc.check(t, results[0])
			if got := readFile(t, path); got != unsorted {
				t.Fatalf("file was rewritten:\n%s", got)
			}
		})
	}
}

func TestFormatPathsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"bad.yaml":    "Resources:\n  A: [\n",
		"other.yaml":  "Parameters: {}\n",
		"sorted.yaml": sorted,
	})

	fs, results, err := FormatPaths(context.Background(), []string{dir}, defaultRun())
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("want 3 results, got %d", len(results))
	}
	bad, other, ok := results[0], results[1], results[2]
	if !bad.Failed() || len(codes(bad)) != 1 || codes(bad)[0] != diag.YmlInvalid {
		t.Fatalf("bad.yaml diagnostics %v", codes(bad))
	}
	if got := readFile(t, filepath.Join(dir, "bad.yaml")); got != "Resources:\n  A: [\n" {
		t.Fatalf("malformed file rewritten: %q", got)
	}
	if other.Failed() || !other.Skipped || codes(other)[0] != diag.FmtNotApplicable {
		t.Fatalf("other.yaml %+v", other)
	}
	if ok.Failed() || ok.Changed {
		t.Fatalf("sorted.yaml %+v", ok)
	}

	line := diag.FormatShortDiagnostics(bad.Bag.Pointers(), fs, false)
	if !strings.HasPrefix(line, "error YML2001 ") || !strings.Contains(line, "bad.yaml:") {
		t.Fatalf("short diagnostic %q", line)
	}
}

func TestFormatPathsNonConvergence(t *testing.T) {
	in := "Resources:\n    Bucket:\n        Type: X\n"
	for _, partial := range []bool{false, true} {
		dir := t.TempDir()
		path := filepath.Join(dir, "t.yaml")
		writeFiles(t, dir, map[string]string{"t.yaml": in})
		opts := defaultRun()
		opts.Options.EnsureVersion = false
		opts.Options.MaxIndentPasses = 1
		opts.WritePartial = partial

		_, results, err := FormatPaths(context.Background(), []string{path}, opts)
		if err != nil {
			t.Fatalf("format: %v", err)
		}
		r := results[0]
		if !r.Partial || !r.Failed() || codes(r)[0] != diag.FmtNonConvergence {
			t.Fatalf("partial=%v: result %+v", partial, r)
		}
		d := r.Bag.Items()[0]
		if len(d.Notes) != 1 || d.Notes[0].Span.Start != d.Primary.Start || d.Notes[0].Span.Empty() {
			t.Fatalf("non-convergence should point a note at the last shifted block: %+v", d)
		}
		if !strings.Contains(d.Notes[0].Msg, "column 6, want 4") {
			t.Fatalf("note = %q", d.Notes[0].Msg)
		}
		got := readFile(t, path)
		if partial && got != "Resources:\n  Bucket:\n      Type: X\n" {
			t.Fatalf("best-effort text not written: %q", got)
		}
		if !partial && got != in {
			t.Fatalf("file written without --write-partial: %q", got)
		}
	}
}

func TestFormatPathsBatchErrors(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := FormatPaths(context.Background(), []string{dir}, defaultRun()); !errors.Is(err, ErrNoTemplates) {
		t.Fatalf("want ErrNoTemplates, got %v", err)
	}

	opts := defaultRun()
	opts.Options.NewLines = -2
	if _, _, err := FormatPaths(context.Background(), []string{dir}, opts); !errors.Is(err, format.ErrInvalidOptions) {
		t.Fatalf("want ErrInvalidOptions, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := FormatPaths(ctx, []string{dir}, defaultRun()); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestFormatPathsCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.yaml")
	writeFiles(t, dir, map[string]string{"t.yaml": unsorted})
	cache, err := OpenCacheDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := defaultRun()
	opts.Cache = cache

	_, first, err := FormatPaths(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first[0].Cached || !first[0].Written {
		t.Fatalf("first run %+v", first[0])
	}

	_, second, err := FormatPaths(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second[0].Cached || second[0].Changed {
		t.Fatalf("second run should hit the cache: %+v", second[0])
	}

	opts.Options.KeyIndent = 4
	_, third, err := FormatPaths(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third[0].Cached {
		t.Fatalf("changed rules must miss the cache")
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func TestFormatPathsProgress(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.yaml": unsorted, "b.yaml": "Resources:\n  A: [\n"})
	sink := &recordingSink{}
	opts := defaultRun()
	opts.Progress = sink
	if _, _, err := FormatPaths(context.Background(), []string{dir}, opts); err != nil {
		t.Fatalf("format: %v", err)
	}

	last := make(map[string]Status)
	for _, ev := range sink.events {
		last[filepath.Base(ev.File)] = ev.Status
	}
	if last["a.yaml"] != StatusDone || last["b.yaml"] != StatusError {
		t.Fatalf("final statuses %v", last)
	}
}

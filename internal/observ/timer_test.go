package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	idx := timer.Begin("reorder")
	timer.End(idx, "2 moves")
	timer.End(42, "ignored")

	report := timer.Report()
	if len(report.Phases) != 1 {
		t.Fatalf("want 1 phase, got %d", len(report.Phases))
	}
	if report.Phases[0].Name != "reorder" || report.Phases[0].Note != "2 moves" {
		t.Fatalf("unexpected phase %+v", report.Phases[0])
	}
	summary := timer.Summary()
	if !strings.Contains(summary, "reorder") || !strings.Contains(summary, "// 2 moves") || !strings.Contains(summary, "total") {
		t.Fatalf("summary misses fields:\n%s", summary)
	}
}

func TestMerge(t *testing.T) {
	a := Report{TotalMS: 3, Phases: []PhaseReport{{Name: "parse", DurationMS: 1}, {Name: "indent", DurationMS: 2, Note: "x"}}}
	b := Report{TotalMS: 4, Phases: []PhaseReport{{Name: "indent", DurationMS: 3}, {Name: "newline", DurationMS: 1}}}
	got := Merge(a, b)
	if got.TotalMS != 7 {
		t.Fatalf("total: want 7 got %v", got.TotalMS)
	}
	want := []PhaseReport{{Name: "parse", DurationMS: 1}, {Name: "indent", DurationMS: 5}, {Name: "newline", DurationMS: 1}}
	if len(got.Phases) != len(want) {
		t.Fatalf("phases: want %d got %d", len(want), len(got.Phases))
	}
	for i := range want {
		if got.Phases[i] != want[i] {
			t.Fatalf("phase %d: want %+v got %+v", i, want[i], got.Phases[i])
		}
	}
}

package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelGating(t *testing.T) {
	cases := []struct {
		level Level
		emit  []Scope
		skip  []Scope
	}{
		{LevelOff, nil, []Scope{ScopeDriver, ScopeNode}},
		{LevelError, nil, []Scope{ScopeDriver}},
		{LevelPhase, []Scope{ScopeDriver, ScopeFile}, []Scope{ScopePass, ScopeNode}},
		{LevelDetail, []Scope{ScopeDriver, ScopeFile, ScopePass}, []Scope{ScopeNode}},
		{LevelDebug, []Scope{ScopeDriver, ScopeFile, ScopePass, ScopeNode}, nil},
	}
	for _, tc := range cases {
		for _, s := range tc.emit {
			if !tc.level.ShouldEmit(s) {
				t.Errorf("%s should emit %s", tc.level, s)
			}
		}
		for _, s := range tc.skip {
			if tc.level.ShouldEmit(s) {
				t.Errorf("%s should not emit %s", tc.level, s)
			}
		}
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if l, err := ParseLevel("detail"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel(detail) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat(ndjson) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestStreamTextOutput(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDetail, Format: FormatText, Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	file := Begin(tr, ScopeFile, "format", 0)
	pass := Begin(tr, ScopePass, "reorder", file.ID())
	Point(tr, ScopeNode, "indent.fix", "hidden", pass.ID())
	pass.WithExtra("moves", "2").End("")
	file.End("changed")

	out := buf.String()
	for _, want := range []string{"→ format", "  → reorder", "← reorder {moves=2}", "← format (changed)"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "indent.fix") {
		t.Errorf("node point leaked at detail level:\n%s", out)
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeNode, "indent.fix", "map-indent", 7)

	var ev struct {
		Kind     string `json:"kind"`
		Scope    string `json:"scope"`
		Name     string `json:"name"`
		Detail   string `json:"detail"`
		ParentID uint64 `json:"parent_id"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if ev.Kind != "point" || ev.Scope != "node" || ev.Name != "indent.fix" || ev.Detail != "map-indent" || ev.ParentID != 7 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if tr.Enabled() {
		t.Fatalf("off tracer must be disabled")
	}
	s := Begin(tr, ScopeDriver, "run", 0)
	if s.ID() != 0 || s.End("") != 0 {
		t.Fatalf("nop span should be inert")
	}
}

func TestContextPropagation(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop {
		t.Fatalf("empty context should carry Nop")
	}
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx = WithTracer(ctx, tr)
	span := Begin(FromContext(ctx), ScopeFile, "f", 0)
	ctx = WithSpan(ctx, span)
	if got := CurrentSpan(ctx).SpanID; got != span.ID() || got == 0 {
		t.Fatalf("span id %d, want %d", got, span.ID())
	}
	if WithSpan(ctx, nil) != ctx {
		t.Fatalf("nil span must keep context")
	}
}

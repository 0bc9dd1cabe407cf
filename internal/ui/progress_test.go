package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"cfnfmt/internal/driver"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		value string
		width int
		want  string
	}{
		{"stacks/app.yaml", 0, "stacks/app.yaml"},
		{"stacks/app.yaml", 40, "stacks/app.yaml"},
		{"stacks/app.yaml", 3, "sta"},
	}
	for _, tt := range tests {
		if got := truncate(tt.value, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.value, tt.width, got, tt.want)
		}
	}

	got := truncate("stacks/network/vpc.yaml", 12)
	if !strings.HasSuffix(got, "...") || runewidth.StringWidth(got) > 12 {
		t.Errorf("truncate to 12 = %q", got)
	}
}

func TestApplyEvent(t *testing.T) {
	model := NewProgressModel("cfnfmt", []string{"a.yaml"}, nil).(*progressModel)

	model.applyEvent(driver.Event{File: "a.yaml", Stage: driver.StageFormat, Status: driver.StatusWorking})
	if got := model.items[0].status; got != "formatting" {
		t.Fatalf("status = %q, want formatting", got)
	}
	if got := model.percent(); got != 0.5 {
		t.Fatalf("percent = %v, want 0.5", got)
	}

	model.applyEvent(driver.Event{File: "b.yaml", Stage: driver.StageFormat, Status: driver.StatusError})
	if len(model.items) != 2 || model.failed != 1 {
		t.Fatalf("items %d failed %d, want 2 and 1", len(model.items), model.failed)
	}

	model.applyEvent(driver.Event{File: "a.yaml", Stage: driver.StageFormat, Status: driver.StatusDone})
	model.applyEvent(driver.Event{File: "a.yaml", Stage: driver.StageWrite, Status: driver.StatusWorking})
	if got := model.items[0].status; got != "done" {
		t.Fatalf("status after done = %q, want done", got)
	}
	if got := model.finished(); got != 2 {
		t.Fatalf("finished = %d, want 2", got)
	}

	view := model.View()
	for _, want := range []string{"cfnfmt (2/2), 1 failed", "a.yaml", "b.yaml"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

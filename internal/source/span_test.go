package source

import "testing"

func TestSpanEmpty(t *testing.T) {
	tests := []struct {
		span Span
		want bool
	}{
		{Span{Start: 4, End: 4}, true},
		{Span{Start: 3, End: 6}, false},
		{Span{}, true},
	}
	for _, tt := range tests {
		if got := tt.span.Empty(); got != tt.want {
			t.Errorf("%v.Empty() = %v, want %v", tt.span, got, tt.want)
		}
	}
}

func TestSpanString(t *testing.T) {
	if got := (Span{File: 2, Start: 3, End: 6}).String(); got != "2:3-6" {
		t.Fatalf("String = %q", got)
	}
}

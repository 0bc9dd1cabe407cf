package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("template.yaml", []byte("Resources: {}\n"), 0)
	id2 := fs.Add("template.yaml", []byte("Resources:\n  A: 1\n"), 0)
	if id1 == id2 {
		t.Fatalf("expected a new FileID for the second Add")
	}

	latest, ok := fs.GetLatest("template.yaml")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d, %v; want %d, true", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "Resources: {}\n" {
		t.Fatalf("first version lost: %q", got)
	}
	if fs.Get(FileID(99)) != nil {
		t.Fatalf("unknown id must resolve to nil")
	}
}

// TestAddVirtualLineIdx проверяет правильность построения LineIdx для AddVirtual
func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.yaml", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag to be set")
	}
}

func TestFileOffset(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.yaml", []byte("ab\ncde\nf"))
	file := fs.Get(id)

	tests := []struct {
		pos  LineCol
		want uint32
	}{
		{LineCol{Line: 1, Col: 1}, 0},
		{LineCol{Line: 1, Col: 2}, 1},
		{LineCol{Line: 2, Col: 1}, 3},
		{LineCol{Line: 2, Col: 3}, 5},
		{LineCol{Line: 3, Col: 1}, 7},
		{LineCol{Line: 9, Col: 1}, 8},
		{LineCol{Line: 3, Col: 40}, 8},
	}
	for _, tt := range tests {
		if got := file.Offset(tt.pos); got != tt.want {
			t.Errorf("Offset(%+v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.yaml", []byte("first\nsecond\nthird"))
	file := fs.Get(id)

	for i, want := range []string{"", "first", "second", "third", ""} {
		if got := file.GetLine(uint32(i)); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", i, got, want)
		}
	}
}

// TestLoadNormalizesAndRestores проверяет, что Load снимает BOM/CRLF, а Restore возвращает их
func TestLoadNormalizesAndRestores(t *testing.T) {
	raw := []byte("\xEF\xBB\xBFResources:\r\n  A: 1\r\n")
	path := filepath.Join(t.TempDir(), "t.yaml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if got := string(file.Content); got != "Resources:\n  A: 1\n" {
		t.Fatalf("normalized content = %q", got)
	}
	if file.Flags&FileHadBOM == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %08b", file.Flags)
	}
	if got := file.Restore(file.Content); string(got) != string(raw) {
		t.Fatalf("Restore = %q, want %q", got, raw)
	}
}

// TestResolveUTF8 проверяет разрешение позиций в UTF-8 тексте
func TestResolveUTF8(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.yaml", []byte("α\n"))

	start, end := fs.Resolve(Span{File: id, Start: 0, End: 1})
	if start != (LineCol{Line: 1, Col: 1}) {
		t.Errorf("start = %+v", start)
	}
	if end != (LineCol{Line: 1, Col: 2}) {
		t.Errorf("end = %+v", end)
	}
}

func TestFormatPathRelative(t *testing.T) {
	base := t.TempDir()
	fs := NewFileSetWithBase(base)
	id := fs.AddVirtual(filepath.Join(base, "nested", "t.yaml"), nil)

	if got := fs.Get(id).FormatPath("relative", fs.BaseDir()); got != "nested/t.yaml" {
		t.Fatalf("relative path = %q", got)
	}
	if got := fs.Get(id).FormatPath("basename", ""); got != "t.yaml" {
		t.Fatalf("basename = %q", got)
	}
}

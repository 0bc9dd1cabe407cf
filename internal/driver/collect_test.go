package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCollectPaths(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.yaml":         "Resources: {}\n",
		"a.yaml":         "Resources: {}\n",
		"c.template":     "Resources: {}\n",
		"notes.txt":      "x\n",
		"nested/d.yaml":  "Resources: {}\n",
		"single.cfn":     "Resources: {}\n",
		"dir.yaml/e.yml": "Resources: {}\n",
	})

	got, err := CollectPaths(context.Background(),
		[]string{filepath.Join(dir, "single.cfn"), dir, filepath.Join(dir, "a.yaml")},
		[]string{"*.yaml", "*.template"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := []string{
		filepath.Join(dir, "single.cfn"),
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "c.template"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v\ngot  %v", want, got)
	}
}

func TestCollectPathsRejects(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"t.yaml": "Resources: {}\n"})
	link := filepath.Join(dir, "link.yaml")
	if err := os.Symlink(filepath.Join(dir, "t.yaml"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := CollectPaths(context.Background(), []string{link}, []string{"*.yaml"})
	var unsupported *UnsupportedInputError
	if !errors.As(err, &unsupported) || unsupported.Path != link {
		t.Fatalf("want UnsupportedInputError for %s, got %v", link, err)
	}

	// symlinks found by a directory pattern are skipped, not fatal
	got, err := CollectPaths(context.Background(), []string{dir}, []string{"*.yaml"})
	if err != nil || len(got) != 1 {
		t.Fatalf("directory scan: %v %v", got, err)
	}

	if _, err := CollectPaths(context.Background(), []string{filepath.Join(dir, "missing")}, nil); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want ErrNotExist, got %v", err)
	}
}

func TestGlobEscape(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stacks[prod]")
	writeFiles(t, dir, map[string]string{"t.yaml": "Resources: {}\n"})
	got, err := CollectPaths(context.Background(), []string{dir}, []string{"*.yaml"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 1 || got[0] != filepath.Join(dir, "t.yaml") {
		t.Fatalf("escaped directory not matched: %v", got)
	}
}

package testkit

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

const (
	inputSuffix  = ".in.yaml"
	goldenSuffix = ".golden.yaml"
)

// ReadPair loads <dir>/<name>.in.yaml and <dir>/<name>.golden.yaml.
func ReadPair(t testing.TB, dir, name string) (in, golden []byte) {
	t.Helper()
	in, err := os.ReadFile(filepath.Join(dir, name+inputSuffix))
	if err != nil {
		t.Fatalf("read input: %v", err)
	}
	golden, err = os.ReadFile(filepath.Join(dir, name+goldenSuffix))
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return in, golden
}

// Fixtures lists every yaml file under dir, sorted.
func Fixtures(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read fixtures: %v", err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".yaml") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out
}

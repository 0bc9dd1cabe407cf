package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"cfnfmt/internal/format"
)

func TestDefaultMatchesFormatter(t *testing.T) {
	got := Default().Options()
	want := format.DefaultOptions()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("default options differ:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestParseOverridesKeyByKey(t *testing.T) {
	cases := []struct {
		name  string
		path  string
		data  string
		check func(t *testing.T, c *Config)
	}{
		{
			name: "yaml",
			path: ".cfnfmt",
			data: "template-filenames: ['*.cfn']\nrules:\n  key-indent-level: 4\n  new-lines-at-end-of-file: false\n",
			check: func(t *testing.T, c *Config) {
				if !reflect.DeepEqual(c.TemplateFilenames, []string{"*.cfn"}) {
					t.Errorf("template-filenames = %v", c.TemplateFilenames)
				}
				if c.Rules.KeyIndentLevel != Int(4) {
					t.Errorf("key-indent-level = %v", c.Rules.KeyIndentLevel)
				}
				if c.Rules.NewLinesAtEndOfFile.Enabled {
					t.Errorf("new-lines-at-end-of-file should be off")
				}
				if !c.Rules.AWSTemplateFormatVersion || !c.Rules.SectionOrder.Enabled {
					t.Errorf("untouched rules lost their defaults: %+v", c.Rules)
				}
			},
		},
		{
			name: "toml",
			path: ".cfnfmt.toml",
			data: "[rules]\nlist-indent-offset = 2\nsection-order = [\"Resources\", \"Outputs\"]\nresource-key-order = false\nstrip-non-ascii = true\n",
			check: func(t *testing.T, c *Config) {
				if c.Rules.ListIndentOffset != Int(2) {
					t.Errorf("list-indent-offset = %v", c.Rules.ListIndentOffset)
				}
				if !reflect.DeepEqual(c.Rules.SectionOrder.OrNil(), []string{"Resources", "Outputs"}) {
					t.Errorf("section-order = %v", c.Rules.SectionOrder)
				}
				if c.Rules.ResourceKeyOrder.Enabled {
					t.Errorf("resource-key-order should be off")
				}
				if !c.Rules.StripNonASCII {
					t.Errorf("strip-non-ascii should be on")
				}
				if len(c.TemplateFilenames) != 3 {
					t.Errorf("template-filenames = %v", c.TemplateFilenames)
				}
			},
		},
		{
			name: "comments only",
			path: ".cfnfmt.yml",
			data: "# nothing yet\n",
			check: func(t *testing.T, c *Config) {
				if !reflect.DeepEqual(c.Options(), format.DefaultOptions()) {
					t.Errorf("expected defaults, got %+v", c.Options())
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Parse(tc.path, []byte(tc.data))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if c.Path != tc.path {
				t.Errorf("path = %q", c.Path)
			}
			tc.check(t, c)
		})
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name string
		path string
		data string
	}{
		{"int rule true", ".cfnfmt", "rules:\n  key-indent-level: true\n"},
		{"int rule string", ".cfnfmt", "rules:\n  key-indent-level: wide\n"},
		{"list rule scalar", ".cfnfmt", "rules:\n  section-order: Resources\n"},
		{"zero step", ".cfnfmt", "rules:\n  key-indent-level: 0\n"},
		{"negative newlines", ".cfnfmt", "rules:\n  new-lines-at-end-of-file: -1\n"},
		{"unknown rule", ".cfnfmt", "rules:\n  tabs: true\n"},
		{"empty patterns", ".cfnfmt", "template-filenames: []\n"},
		{"empty key", ".cfnfmt", "rules:\n  section-order: [Resources, '']\n"},
		{"bad yaml", ".cfnfmt", "rules: [\n"},
		{"toml unknown key", ".cfnfmt.toml", "[rules]\ntabs = true\n"},
		{"toml true", ".cfnfmt.toml", "[rules]\nkey-indent-level = true\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.path, []byte(tc.data))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("want ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestOptionsMapping(t *testing.T) {
	c := Default()
	c.Rules.KeyIndentLevel = IntRule{}
	c.Rules.ListIndentOffset = Int(0)
	c.Rules.SectionOrder = ListRule{}
	c.Rules.NewLinesAtEndOfFile = Int(2)
	opts := c.Options()
	if opts.KeyIndent != 0 || !opts.EnforceListOffset || opts.ListOffset != 0 || opts.SectionOrder != nil || !opts.EnforceNewLines || opts.NewLines != 2 {
		t.Fatalf("unexpected options %+v", opts)
	}
	if err := opts.Validate(); err != nil {
		t.Fatalf("mapped options invalid: %v", err)
	}
}

func TestCandidatesOrder(t *testing.T) {
	env := map[string]string{EnvConfigFile: "/etc/cfn.yaml", "HOME": "/home/u"}
	got := Candidates("/w", func(k string) string { return env[k] })
	want := []string{
		filepath.Join("/w", ".cfnfmt"),
		filepath.Join("/w", ".cfnfmt.yaml"),
		filepath.Join("/w", ".cfnfmt.yml"),
		filepath.Join("/w", ".cfnfmt.toml"),
		"/etc/cfn.yaml",
		filepath.Join("/home/u", ".config", "cfnfmt", "config"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v\ngot  %v", want, got)
	}

	env["XDG_CONFIG_HOME"] = "/xdg"
	got = Candidates("/w", func(k string) string { return env[k] })
	if last := got[len(got)-1]; last != filepath.Join("/xdg", "cfnfmt", "config") {
		t.Fatalf("xdg location not used: %s", last)
	}
}

func TestLoadDiscovery(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigFile, "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	c, err := Load("", dir)
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if c.Path != "" {
		t.Fatalf("expected built-in defaults, got %s", c.Path)
	}

	if err := os.WriteFile(filepath.Join(dir, ".cfnfmt.yml"), []byte("rules:\n  key-indent-level: 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".cfnfmt.toml"), []byte("[rules]\nkey-indent-level = 5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err = Load("", dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Rules.KeyIndentLevel.Value != 3 {
		t.Fatalf(".cfnfmt.yml should win over .cfnfmt.toml, got %v from %s", c.Rules.KeyIndentLevel, c.Path)
	}

	explicit := filepath.Join(dir, ".cfnfmt.toml")
	c, err = Load(explicit, dir)
	if err != nil {
		t.Fatalf("load explicit: %v", err)
	}
	if c.Rules.KeyIndentLevel.Value != 5 {
		t.Fatalf("explicit config ignored: %v", c.Rules.KeyIndentLevel)
	}

	if _, err := Load(filepath.Join(dir, "missing"), dir); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("want ErrConfigNotFound, got %v", err)
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteDefault(dir, false)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "list-indent-offset: false") {
		t.Fatalf("disabled rule not written as false:\n%s", data)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(c.Options(), format.DefaultOptions()) {
		t.Fatalf("round trip changed options: %+v", c.Options())
	}
	if _, err := WriteDefault(dir, false); err == nil {
		t.Fatalf("expected error for existing file")
	}
	if _, err := WriteDefault(dir, true); err != nil {
		t.Fatalf("force write: %v", err)
	}
}

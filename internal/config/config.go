package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"cfnfmt/internal/format"
)

// DefaultFileName is the config file written by "cfnfmt init".
const DefaultFileName = ".cfnfmt"

// EnvConfigFile names the environment variable holding a config path.
const EnvConfigFile = "CFNFMT_CONFIG_FILE"

// ErrInvalidConfig is wrapped by every config decoding or validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrConfigNotFound is returned when an explicitly named config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// Config is the merged configuration of one run.
type Config struct {
	TemplateFilenames []string `yaml:"template-filenames" toml:"template-filenames"`
	Rules             Rules    `yaml:"rules" toml:"rules"`

	// Path is the file the config was read from, empty for built-in defaults.
	Path string `yaml:"-" toml:"-"`
}

// Rules holds the formatting rules.
type Rules struct {
	AWSTemplateFormatVersion bool     `yaml:"aws-template-format-version" toml:"aws-template-format-version"`
	KeyIndentLevel           IntRule  `yaml:"key-indent-level" toml:"key-indent-level"`
	ListIndentOffset         IntRule  `yaml:"list-indent-offset" toml:"list-indent-offset"`
	SectionOrder             ListRule `yaml:"section-order" toml:"section-order"`
	ResourceKeyOrder         ListRule `yaml:"resource-key-order" toml:"resource-key-order"`
	NewLinesAtEndOfFile      IntRule  `yaml:"new-lines-at-end-of-file" toml:"new-lines-at-end-of-file"`
	StripNonASCII            bool     `yaml:"strip-non-ascii" toml:"strip-non-ascii"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TemplateFilenames: []string{"*.yaml", "*.yml", "*.template"},
		Rules: Rules{
			AWSTemplateFormatVersion: true,
			KeyIndentLevel:           Int(2),
			ListIndentOffset:         IntRule{},
			SectionOrder:             List(format.DefaultSectionOrder...),
			ResourceKeyOrder:         List(format.DefaultResourceOrder...),
			NewLinesAtEndOfFile:      Int(1),
		},
	}
}

// Parse decodes data over the defaults: template-filenames replaces the
// default list, each rule key overrides its default. Files ending in .toml
// are decoded as TOML, everything else as YAML.
func Parse(path string, data []byte) (*Config, error) {
	cfg := Default()
	cfg.Path = path
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, fmt.Errorf("%w: %s: unknown key %q", ErrInvalidConfig, path, keys[0].String())
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// пустой файл или только комментарии: остаются значения по умолчанию
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads and parses one config file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304 -- path comes from the command line or the lookup chain
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(path, data)
}

// Load resolves the config for a run started in workDir. An explicit path
// must exist; otherwise the first file of the lookup chain is used, and the
// defaults when there is none.
func Load(explicit, workDir string) (*Config, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}
	path, ok := Find(Candidates(workDir, os.Getenv))
	if !ok {
		return Default(), nil
	}
	return LoadFile(path)
}

// Validate checks the merged values.
func (c *Config) Validate() error {
	if len(c.TemplateFilenames) == 0 {
		return fmt.Errorf("%w: template-filenames must not be empty", ErrInvalidConfig)
	}
	for _, p := range c.TemplateFilenames {
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("%w: template-filenames: bad pattern %q", ErrInvalidConfig, p)
		}
	}
	r := c.Rules
	if r.KeyIndentLevel.Enabled && r.KeyIndentLevel.Value < 1 {
		return fmt.Errorf("%w: key-indent-level must be at least 1, got %d", ErrInvalidConfig, r.KeyIndentLevel.Value)
	}
	if r.ListIndentOffset.Enabled && r.ListIndentOffset.Value < 0 {
		return fmt.Errorf("%w: list-indent-offset must not be negative, got %d", ErrInvalidConfig, r.ListIndentOffset.Value)
	}
	if r.NewLinesAtEndOfFile.Enabled && r.NewLinesAtEndOfFile.Value < 0 {
		return fmt.Errorf("%w: new-lines-at-end-of-file must not be negative, got %d", ErrInvalidConfig, r.NewLinesAtEndOfFile.Value)
	}
	for _, list := range []struct {
		name string
		rule ListRule
	}{
		{"section-order", r.SectionOrder},
		{"resource-key-order", r.ResourceKeyOrder},
	} {
		for _, k := range list.rule.Keys {
			if strings.TrimSpace(k) == "" {
				return fmt.Errorf("%w: %s contains an empty key", ErrInvalidConfig, list.name)
			}
		}
	}
	return nil
}

// Options maps the rules onto the formatter's rule set.
func (c *Config) Options() format.Options {
	opts := format.DefaultOptions()
	r := c.Rules
	opts.EnsureVersion = r.AWSTemplateFormatVersion
	opts.KeyIndent = r.KeyIndentLevel.OrOff(0)
	opts.EnforceListOffset = r.ListIndentOffset.Enabled
	opts.ListOffset = r.ListIndentOffset.Value
	opts.SectionOrder = r.SectionOrder.OrNil()
	opts.ResourceOrder = r.ResourceKeyOrder.OrNil()
	opts.EnforceNewLines = r.NewLinesAtEndOfFile.Enabled
	opts.NewLines = r.NewLinesAtEndOfFile.Value
	opts.StripNonASCII = r.StripNonASCII
	return opts
}

// Marshal renders c as a YAML config file.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# cfnfmt configuration\n\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default config as .cfnfmt into dir. An existing
// file is kept unless force is set.
func WriteDefault(dir string, force bool) (string, error) {
	path := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("config file already exists: %s", path)
	}
	data, err := Default().Marshal()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

package config

import (
	"os"
	"path/filepath"
)

// Candidates lists the config locations in lookup order: the working
// directory files, $CFNFMT_CONFIG_FILE, then the user config directory.
func Candidates(workDir string, getenv func(string) string) []string {
	var out []string
	for _, name := range []string{DefaultFileName, ".cfnfmt.yaml", ".cfnfmt.yml", ".cfnfmt.toml"} {
		out = append(out, filepath.Join(workDir, name))
	}
	if p := getenv(EnvConfigFile); p != "" {
		out = append(out, p)
	}
	if dir := getenv("XDG_CONFIG_HOME"); dir != "" {
		out = append(out, filepath.Join(dir, "cfnfmt", "config"))
	} else if home := getenv("HOME"); home != "" {
		out = append(out, filepath.Join(home, ".config", "cfnfmt", "config"))
	}
	return out
}

// Find returns the first candidate that is a regular file.
func Find(candidates []string) (string, bool) {
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

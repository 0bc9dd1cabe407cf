package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cfnfmt/internal/diag"
	"cfnfmt/internal/diagfmt"
	"cfnfmt/internal/driver"
	"cfnfmt/internal/observ"
	"cfnfmt/internal/source"
	"cfnfmt/internal/version"
)

// applyColorFlag resolves --color against f and sets the global color mode.
func applyColorFlag(cmd *cobra.Command, f *os.File) error {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	mode, err := readColorMode(value)
	if err != nil {
		return err
	}
	color.NoColor = !useColor(mode, f)
	return nil
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}

// collectDiagnostics gathers the diagnostics of all results at minSev or above.
func collectDiagnostics(results []driver.FormatResult, minSev diag.Severity) []*diag.Diagnostic {
	var out []*diag.Diagnostic
	for i := range results {
		if results[i].Bag == nil {
			continue
		}
		for _, d := range results[i].Bag.Pointers() {
			if d.Severity >= minSev {
				out = append(out, d)
			}
		}
	}
	return out
}

func renderFormatText(stdout, stderr io.Writer, fileSet *source.FileSet, results []driver.FormatResult, ff formatFlags) {
	for i := range results {
		res := &results[i]
		switch {
		case ff.stdout:
			if !res.Failed() {
				mustWrite(stdout, string(res.Formatted))
			}
		case ff.diff:
			if res.Diff != "" {
				mustWrite(stdout, res.Diff)
			}
		case ff.check:
			if res.Changed && !ff.quiet {
				mustWrite(stdout, res.Path+"\n")
			}
		default:
			if res.Written && !ff.quiet {
				mustWrite(stdout, "reformatted "+res.Path+"\n")
			}
		}
	}

	// info-диагностики (пропущенные шаблоны) только в debug
	minSev := diag.SevWarning
	if ff.debug {
		minSev = diag.SevInfo
	}
	diags := collectDiagnostics(results, minSev)
	if len(diags) == 0 {
		return
	}
	if ff.diagStyle == "pretty" {
		bag := diag.NewBag(0)
		for _, d := range diags {
			bag.Add(*d)
		}
		bag.Sort()
		opts := diagfmt.PrettyOpts{Color: !color.NoColor, Context: 1, PathMode: diagfmt.PathModeRelative, ShowNotes: true}
		if err := diagfmt.Pretty(stderr, bag, fileSet, opts); err != nil {
			panic(fmt.Errorf("write diagnostics: %w", err))
		}
		return
	}
	text := diag.FormatShortDiagnostics(diags, fileSet, false)
	if text == "" {
		return
	}
	mustWrite(stderr, colorizeSeverities(text)+"\n")
}

// colorizeSeverities colors the leading severity word of each short
// diagnostic line.
func colorizeSeverities(text string) string {
	if color.NoColor {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		word, rest, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		var sev diag.Severity
		switch word {
		case "error":
			sev = diag.SevError
		case "warning":
			sev = diag.SevWarning
		case "info":
			sev = diag.SevInfo
		default:
			continue
		}
		lines[i] = severityColor(sev).Sprint(word) + " " + rest
	}
	return strings.Join(lines, "\n")
}

type jsonDiagnostic struct {
	Severity diag.Severity  `json:"severity"`
	Code     diag.Code      `json:"code"`
	Message  string         `json:"message"`
	Location *diag.Location `json:"location,omitempty"`
}

type jsonResult struct {
	Path        string           `json:"path"`
	Changed     bool             `json:"changed"`
	Written     bool             `json:"written"`
	Skipped     bool             `json:"skipped,omitempty"`
	Cached      bool             `json:"cached,omitempty"`
	Partial     bool             `json:"partial,omitempty"`
	Moves       int              `json:"moves"`
	IndentFixes int              `json:"indent_fixes"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
	Timings     *observ.Report   `json:"timings,omitempty"`
}

type jsonPayload struct {
	Check bool         `json:"check"`
	Files []jsonResult `json:"files"`
}

func renderFormatJSON(out io.Writer, fileSet *source.FileSet, results []driver.FormatResult, ff formatFlags) error {
	payload := jsonPayload{Check: ff.check, Files: make([]jsonResult, 0, len(results))}
	for i := range results {
		res := &results[i]
		jr := jsonResult{
			Path:        res.Path,
			Changed:     res.Changed,
			Written:     res.Written,
			Skipped:     res.Skipped,
			Cached:      res.Cached,
			Partial:     res.Partial,
			Moves:       res.Moves,
			IndentFixes: res.IndentFixes,
		}
		if res.Bag != nil {
			for _, d := range res.Bag.Items() {
				jd := jsonDiagnostic{Severity: d.Severity, Code: d.Code, Message: d.Message}
				if loc, ok := diag.Locate(fileSet, d.Primary); ok {
					jd.Location = &loc
				}
				jr.Diagnostics = append(jr.Diagnostics, jd)
			}
		}
		if ff.timings && len(res.Timings.Phases) > 0 {
			timings := res.Timings
			jr.Timings = &timings
		}
		payload.Files = append(payload.Files, jr)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func renderFormatSARIF(out io.Writer, fileSet *source.FileSet, results []driver.FormatResult, args []string) error {
	bag := diag.NewBag(0)
	for i := range results {
		bag.Merge(results[i].Bag)
	}
	bag.Sort()
	return diagfmt.Sarif(out, bag, fileSet, diagfmt.SarifRunMeta{
		ToolName:       "cfnfmt",
		ToolVersion:    version.Version,
		InvocationArgs: args,
	})
}

func mustWrite(w io.Writer, s string) {
	if _, err := io.WriteString(w, s); err != nil {
		panic(fmt.Errorf("write output: %w", err))
	}
}

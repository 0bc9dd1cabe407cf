package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cfnfmt/internal/config"
	"cfnfmt/internal/diag"
	"cfnfmt/internal/driver"
	"cfnfmt/internal/source"
	"cfnfmt/internal/trace"
)

func init() {
	flags := rootCmd.Flags()
	flags.StringP("config", "c", "", "path to a config file (default: lookup chain)")
	flags.Bool("output-to-stdout", false, "print formatted templates to stdout instead of rewriting files")
	flags.Bool("stdout", false, "alias for --output-to-stdout")
	flags.Bool("check", false, "report templates that need formatting without writing them")
	flags.Bool("diff", false, "print a unified diff per changed template without writing")
	flags.String("format", "text", "output format (text|json|sarif)")
	flags.String("diagnostics", "short", "diagnostic layout for text output (short|pretty)")
	flags.Int("jobs", 0, "number of templates formatted in parallel (default GOMAXPROCS)")
	flags.Bool("cache", false, "skip templates already known to be formatted")
	flags.Bool("write-partial", false, "write templates whose indentation did not converge")
	flags.Bool("debug", false, "trace every pass to stderr (same as --trace=- --trace-level=debug)")
	_ = flags.MarkHidden("stdout") //nolint:errcheck
}

type formatFlags struct {
	configPath   string
	stdout       bool
	check        bool
	diff         bool
	outputFormat string
	diagStyle    string
	jobs         int
	cache        bool
	writePartial bool
	debug        bool
	quiet        bool
	timings      bool
	maxDiags     int
	ui           uiMode
}

func readFormatFlags(cmd *cobra.Command) (formatFlags, error) {
	var ff formatFlags
	var err error
	flags := cmd.Flags()
	if ff.configPath, err = flags.GetString("config"); err != nil {
		return ff, err
	}
	if ff.stdout, err = flags.GetBool("output-to-stdout"); err != nil {
		return ff, err
	}
	alias, err := flags.GetBool("stdout")
	if err != nil {
		return ff, err
	}
	ff.stdout = ff.stdout || alias
	if ff.check, err = flags.GetBool("check"); err != nil {
		return ff, err
	}
	if ff.diff, err = flags.GetBool("diff"); err != nil {
		return ff, err
	}
	if ff.outputFormat, err = flags.GetString("format"); err != nil {
		return ff, err
	}
	if ff.diagStyle, err = flags.GetString("diagnostics"); err != nil {
		return ff, err
	}
	if ff.jobs, err = flags.GetInt("jobs"); err != nil {
		return ff, err
	}
	if ff.cache, err = flags.GetBool("cache"); err != nil {
		return ff, err
	}
	if ff.writePartial, err = flags.GetBool("write-partial"); err != nil {
		return ff, err
	}
	if ff.debug, err = flags.GetBool("debug"); err != nil {
		return ff, err
	}

	persistent := cmd.Root().PersistentFlags()
	if ff.quiet, err = persistent.GetBool("quiet"); err != nil {
		return ff, err
	}
	if ff.timings, err = persistent.GetBool("timings"); err != nil {
		return ff, err
	}
	if ff.maxDiags, err = persistent.GetInt("max-diagnostics"); err != nil {
		return ff, err
	}
	uiValue, err := persistent.GetString("ui")
	if err != nil {
		return ff, err
	}
	if ff.ui, err = readUIMode(uiValue); err != nil {
		return ff, err
	}
	return ff, ff.validate()
}

func (ff formatFlags) validate() error {
	modes := 0
	for _, on := range []bool{ff.stdout, ff.check, ff.diff} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return errors.New("--output-to-stdout, --check and --diff are mutually exclusive")
	}
	switch ff.outputFormat {
	case "text":
	case "json", "sarif":
		if ff.stdout || ff.diff {
			return fmt.Errorf("--format=%s cannot be combined with --output-to-stdout or --diff", ff.outputFormat)
		}
	default:
		return fmt.Errorf("unsupported output format %q", ff.outputFormat)
	}
	switch ff.diagStyle {
	case "", "short", "pretty":
	default:
		return fmt.Errorf("unsupported diagnostics layout %q", ff.diagStyle)
	}
	if ff.jobs < 0 {
		return fmt.Errorf("--jobs must not be negative, got %d", ff.jobs)
	}
	return nil
}

func (ff formatFlags) stdoutBusy() bool {
	return ff.stdout || ff.diff || ff.outputFormat != "text"
}

func runFormat(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	ff, err := readFormatFlags(cmd)
	if err != nil {
		return err
	}
	if err = applyColorFlag(cmd, os.Stderr); err != nil {
		return err
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	cleanup, err := setupTracing(cmd, ff.debug)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := cmd.Context()

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(ff.configPath, wd)
	if err != nil {
		// конфиг проверяется до того, как тронут хоть один файл
		reportRunError(diag.CfgInvalid, "", err.Error())
		return errExitStatus
	}
	if cfg.Path != "" {
		trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "config", cfg.Path, 0)
	}

	opts := driver.FormatOptions{
		Options:        cfg.Options(),
		Patterns:       cfg.TemplateFilenames,
		Check:          ff.check,
		Stdout:         ff.stdout,
		Diff:           ff.diff,
		WritePartial:   ff.writePartial,
		Jobs:           ff.jobs,
		MaxDiagnostics: ff.maxDiags,
	}
	if ff.cache {
		cache, cacheErr := driver.OpenCache("cfnfmt")
		if cacheErr != nil {
			if !ff.quiet {
				fmt.Fprintf(os.Stderr, "cfnfmt: cache disabled: %v\n", cacheErr)
			}
		} else {
			opts.Cache = cache
		}
	}

	var (
		fileSet *source.FileSet
		results []driver.FormatResult
	)
	if !ff.quiet && shouldUseTUI(ff.ui, ff.stdoutBusy()) {
		fileSet, results, err = runFormatWithUI(ctx, "cfnfmt", args, opts)
	} else {
		fileSet, results, err = driver.FormatPaths(ctx, args, opts)
	}
	if err != nil {
		var unsupported *driver.UnsupportedInputError
		switch {
		case errors.As(err, &unsupported):
			reportRunError(diag.IOUnsupportedInput, unsupported.Path, "cannot handle file type "+unsupported.Mode.Type().String())
			return errExitStatus
		case errors.Is(err, driver.ErrNoTemplates):
			return fmt.Errorf("%w matching %v", err, cfg.TemplateFilenames)
		}
		return err
	}
	if fileSet != nil {
		fileSet.SetBaseDir(wd)
	}

	summary := summarize(results)
	switch ff.outputFormat {
	case "json":
		if err := renderFormatJSON(os.Stdout, fileSet, results, ff); err != nil {
			return err
		}
	case "sarif":
		if err := renderFormatSARIF(os.Stdout, fileSet, results, os.Args[1:]); err != nil {
			return err
		}
	default:
		renderFormatText(os.Stdout, os.Stderr, fileSet, results, ff)
	}
	if ff.timings {
		printTimings(os.Stderr, results)
	}

	if summary.failed > 0 {
		return errExitStatus
	}
	if ff.check && summary.changed > 0 {
		return errExitStatus
	}
	return nil
}

type runSummary struct {
	changed int
	failed  int
}

func summarize(results []driver.FormatResult) runSummary {
	var s runSummary
	for i := range results {
		if results[i].Failed() {
			s.failed++
		}
		if results[i].Changed {
			s.changed++
		}
	}
	return s
}

// reportRunError prints a failure that aborts the whole run in the short
// diagnostic layout.
func reportRunError(code diag.Code, path, msg string) {
	label := severityColor(diag.SevError).Sprint("error")
	if path == "" {
		fmt.Fprintf(os.Stderr, "%s %s %s\n", label, code.ID(), msg)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s %s %s\n", label, code.ID(), filepath.ToSlash(path), msg)
}

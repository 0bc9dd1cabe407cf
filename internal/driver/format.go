package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"cfnfmt/internal/diag"
	"cfnfmt/internal/format"
	"cfnfmt/internal/observ"
	"cfnfmt/internal/source"
	"cfnfmt/internal/trace"
)

var (
	errLoad  = errors.New("load failed")
	errWrite = errors.New("write failed")
)

// FormatOptions configures a formatting run.
type FormatOptions struct {
	Options  format.Options
	Patterns []string // template-filenames, used for directory arguments

	// Check reports changes without writing.
	Check bool
	// Stdout returns formatted content in the results without touching files.
	Stdout bool
	// Diff computes a unified diff per changed file without writing.
	Diff bool
	// WritePartial writes the best-effort text of files whose indentation
	// did not converge.
	WritePartial bool

	Jobs           int
	MaxDiagnostics int
	Cache          *Cache
	Progress       ProgressSink
}

func (o FormatOptions) writes() bool {
	return !o.Check && !o.Stdout && !o.Diff
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path   string
	FileID source.FileID

	Changed bool // formatting would alter (or altered) the file
	Written bool
	Skipped bool // no anchor section
	Cached  bool // content known canonical, pipeline not run
	Partial bool // indentation did not converge

	// Formatted holds the output with the file's original BOM and line
	// endings, set for Stdout runs.
	Formatted []byte
	// Diff is the unified diff, set for Diff runs.
	Diff string

	Moves       int
	IndentFixes int
	Bag         *diag.Bag
	Timings     observ.Report
}

// Failed reports whether the file produced an error diagnostic.
func (r *FormatResult) Failed() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}

// FormatPaths formats the templates named by paths (files, or directories
// matched against opts.Patterns). Files are read into one FileSet up front,
// then formatted in parallel by up to opts.Jobs workers. Per-file failures
// become diagnostics in the results; the returned error is reserved for
// failures of the whole batch (bad input path, invalid rules, cancellation).
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) (*source.FileSet, []FormatResult, error) {
	fileSet := source.NewFileSet()
	if err := ctx.Err(); err != nil {
		return fileSet, nil, err
	}
	if err := opts.Options.Validate(); err != nil {
		return fileSet, nil, err
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "format-paths", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	files, err := CollectPaths(ctx, paths, opts.Patterns)
	if err != nil {
		return fileSet, nil, err
	}
	if len(files) == 0 {
		return fileSet, nil, ErrNoTemplates
	}
	span.WithExtra("files", fmt.Sprint(len(files)))

	var rules Digest
	if opts.Cache != nil {
		if rules, err = RulesDigest(opts.Options); err != nil {
			return fileSet, nil, err
		}
	}

	// FileSet не потокобезопасен: загружаем всё до запуска воркеров
	ids := make([]source.FileID, len(files))
	loadErrs := make([]error, len(files))
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			id = fileSet.Add(path, nil, 0)
			loadErrs[i] = fmt.Errorf("%w: %w", errLoad, err)
		}
		ids[i] = id
		emit(opts.Progress, Event{File: fileSet.Get(id).Path, Stage: StageLoad, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FormatResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file := fileSet.Get(ids[i])
			res, err := formatOne(gctx, file, loadErrs[i], rules, opts)
			res.Path = path
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

func formatOne(ctx context.Context, file *source.File, loadErr error, rules Digest, opts FormatOptions) (FormatResult, error) {
	res := FormatResult{FileID: file.ID, Bag: diag.NewBag(opts.MaxDiagnostics)}
	started := time.Now()
	fail := func(err error) (FormatResult, error) {
		d, ok := fileDiagnostic(file, err, opts.WritePartial)
		if !ok {
			return res, err
		}
		res.Bag.Add(d)
		emit(opts.Progress, Event{File: file.Path, Stage: StageFormat, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		return res, nil
	}
	if loadErr != nil {
		return fail(loadErr)
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "file", trace.CurrentSpan(ctx).SpanID).WithExtra("path", file.Path)
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	var key Digest
	if opts.Cache != nil {
		key = CacheKey(file.Hash, rules)
		var payload CachePayload
		// ошибки чтения кэша не фатальны: просто форматируем заново
		if hit, err := opts.Cache.Get(key, &payload); err == nil && hit {
			res.Cached = true
			res.Skipped = payload.Skipped
			if res.Skipped {
				res.Bag.Add(skippedDiagnostic(file, opts.anchor()))
			}
			res.Formatted = stdoutCopy(file, file.Content, opts)
			span.WithExtra("cache", "hit")
			emit(opts.Progress, Event{File: file.Path, Stage: StageLoad, Status: StatusDone, Elapsed: time.Since(started)})
			return res, nil
		}
	}

	emit(opts.Progress, Event{File: file.Path, Stage: StageFormat, Status: StatusWorking})
	out, err := format.FormatFile(ctx, file.Content, opts.Options)
	res.Changed = out.Changed
	res.Skipped = out.Skipped
	res.Moves = len(out.Moves)
	res.IndentFixes = out.IndentFixes
	res.Timings = out.Timings

	var nc *format.NonConvergenceError
	if err != nil {
		if !errors.As(err, &nc) {
			return fail(err)
		}
		res.Partial = true
		if d, ok := fileDiagnostic(file, err, opts.WritePartial); ok {
			res.Bag.Add(d)
		}
	}
	if res.Skipped {
		res.Bag.Add(skippedDiagnostic(file, opts.anchor()))
	}

	if opts.Diff && res.Changed {
		text, err := UnifiedDiff(file.Path, file.Content, out.Output)
		if err != nil {
			return res, err
		}
		res.Diff = text
	}
	if res.Partial && !opts.WritePartial {
		res.Formatted = stdoutCopy(file, file.Content, opts)
	} else {
		res.Formatted = stdoutCopy(file, out.Output, opts)
	}

	if opts.writes() && res.Changed && (!res.Partial || opts.WritePartial) {
		emit(opts.Progress, Event{File: file.Path, Stage: StageWrite, Status: StatusWorking})
		if err := writeFile(file, out.Output); err != nil {
			return fail(err)
		}
		res.Written = true
	}

	if opts.Cache != nil && !res.Partial && (!res.Changed || res.Written) {
		canonical := CacheKey(sha256Of(out.Output), rules)
		// запись в кэш best-effort
		_ = opts.Cache.Put(canonical, &CachePayload{Path: file.Path, Size: len(out.Output), Skipped: res.Skipped}) //nolint:errcheck
	}

	status := StatusDone
	if res.Failed() {
		status = StatusError
	}
	span.WithExtra("changed", fmt.Sprint(res.Changed))
	emit(opts.Progress, Event{File: file.Path, Stage: StageFormat, Status: status, Elapsed: time.Since(started)})
	return res, nil
}

func (o FormatOptions) anchor() string {
	if o.Options.AnchorKey == "" {
		return format.DefaultOptions().AnchorKey
	}
	return o.Options.AnchorKey
}

func stdoutCopy(file *source.File, text []byte, opts FormatOptions) []byte {
	if !opts.Stdout {
		return nil
	}
	return file.Restore(text)
}

// writeFile replaces the file on disk, restoring the BOM and CRLF line
// endings stripped on load and keeping the permission bits.
func writeFile(file *source.File, text []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(file.Path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(file.Path, file.Restore(text), mode.Perm()); err != nil {
		return fmt.Errorf("%w: %w", errWrite, err)
	}
	return nil
}

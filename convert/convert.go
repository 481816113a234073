package convert

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"

	"github.com/sokinpui/logconv/cli"
	"github.com/sokinpui/logconv/internal/fs"
	"github.com/sokinpui/logconv/internal/nvim"
	"github.com/sokinpui/logconv/internal/patcher"
	"github.com/sokinpui/logconv/internal/rewriter"
	"github.com/sokinpui/logconv/internal/source"
	"github.com/sokinpui/logconv/model"
)

// ProgressUpdate is a callback function to report progress.
type ProgressUpdate func(current, total int)

// Writer persists the rewritten content of one file.
type Writer interface {
	// Write stores modified at path if it differs from original and
	// reports whether anything was written.
	Write(path, original, modified string) (bool, error)
	Close() error
}

type diskWriter struct{}

func (diskWriter) Write(path, original, modified string) (bool, error) {
	return fs.WriteIfChanged(path, original, modified)
}

func (diskWriter) Close() error { return nil }

// App orchestrates the entire application logic.
type App struct {
	cfg              *cli.Config
	rule             rewriter.Rule
	pathResolver     *fs.PathResolver
	sourceProvider   *source.SourceProvider
	logger           *log.Logger
	writer           Writer
	progressCallback ProgressUpdate
}

// Option customizes an App.
type Option func(*App)

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithWriter replaces the writer chosen from the configuration.
func WithWriter(w Writer) Option {
	return func(a *App) { a.writer = w }
}

// WithPathReader makes the app read candidate paths from r instead of
// walking the root.
func WithPathReader(r io.Reader) Option {
	return func(a *App) { a.sourceProvider.WithReader(r) }
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// New creates a new App instance.
func New(cfg *cli.Config, opts ...Option) (*App, error) {
	rule := cfg.Rule()
	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rewrite rule: %w", err)
	}
	pathResolver, err := fs.NewPathResolver(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	a := &App{
		cfg:            cfg,
		rule:           rule,
		pathResolver:   pathResolver,
		sourceProvider: source.New(pathResolver, rule.Extension, cfg.SkipDirs, cfg.Stdin),
		logger:         log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// SetProgressCallback sets a function to be called for progress updates.
func (a *App) SetProgressCallback(cb ProgressUpdate) {
	a.progressCallback = cb
}

// Rule returns the rewrite rule the app applies.
func (a *App) Rule() rewriter.Rule {
	return a.rule
}

// Execute runs the conversion over every candidate file and returns the
// totals. The first read, decode or write error aborts the run.
func (a *App) Execute() (summary model.Summary, err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	paths, err := a.sourceProvider.Collect()
	if err != nil {
		return model.Summary{}, err
	}
	if a.sourceProvider.FromStdin() {
		a.logger.Debug("reading paths from stdin", "count", len(paths))
	} else {
		a.logger.Debug("scanning", "root", a.pathResolver.Root(), "files", len(paths))
	}

	writer, err := a.openWriter()
	if err != nil {
		return model.Summary{}, err
	}
	if writer != nil {
		defer writer.Close()
	}

	summary.DryRun = a.cfg.DryRun
	total := len(paths)
	if a.progressCallback != nil {
		a.progressCallback(0, total)
	}
	for i, path := range paths {
		res, err := a.processFile(path, writer)
		if err != nil {
			return model.Summary{}, err
		}
		summary.Add(res)
		if a.progressCallback != nil {
			a.progressCallback(i+1, total)
		}
	}

	if a.cfg.DryRun && a.cfg.Copy {
		if err := a.copyDiff(summary); err != nil {
			return model.Summary{}, err
		}
	}
	return summary, nil
}

// ProcessFile converts a single file with the configured writer.
func (a *App) ProcessFile(path string) (model.FileResult, error) {
	writer, err := a.openWriter()
	if err != nil {
		return model.FileResult{}, err
	}
	if writer != nil {
		defer writer.Close()
	}
	return a.processFile(a.pathResolver.Resolve(path), writer)
}

func (a *App) openWriter() (Writer, error) {
	switch {
	case a.cfg.DryRun:
		return nil, nil
	case a.writer != nil:
		return a.writer, nil
	case a.cfg.Nvim:
		manager, err := nvim.New()
		if err != nil {
			return nil, err
		}
		return manager, nil
	default:
		return diskWriter{}, nil
	}
}

// processFile runs read, match, rewrite and write for one path. A nil
// writer means nothing is written and a diff is produced instead.
func (a *App) processFile(path string, writer Writer) (model.FileResult, error) {
	rel := a.pathResolver.Relative(path)
	res := model.FileResult{Path: path, Name: filepath.Base(path)}

	content, err := fs.ReadText(path)
	if err != nil {
		return res, err
	}

	rec := a.rule.Apply(path, content)
	if !rec.Changed() {
		a.logger.Debug("no match", "path", rel)
		return res, nil
	}
	res.Count = rec.Count
	if rec.ImportAdded {
		a.logger.Debug("inserted import", "path", rel)
	}

	if writer == nil {
		diff, err := patcher.UnifiedDiff(filepath.ToSlash(rel), rec.Original, rec.Modified)
		if err != nil {
			return res, err
		}
		res.Diff = diff
		res.Modified = true
		return res, nil
	}

	wrote, err := writer.Write(path, rec.Original, rec.Modified)
	if err != nil {
		return res, err
	}
	res.Modified = wrote
	a.logger.Debug("converted", "path", rel, "calls", rec.Count)
	return res, nil
}

// copyDiff puts the combined dry-run diff on the system clipboard.
func (a *App) copyDiff(summary model.Summary) error {
	var b strings.Builder
	for _, r := range summary.Converted {
		b.WriteString(r.Diff)
	}
	diff := b.String()
	if diff == "" {
		return nil
	}
	if err := clipboard.WriteAll(diff); err != nil {
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	a.logger.Info("copied diff to clipboard", "files", len(patcher.ExtractPaths(diff)))
	return nil
}

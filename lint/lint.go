package lint

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/gnolang/selfassign/internal"
	tt "github.com/gnolang/selfassign/internal/types"
)

type LintEngine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnoreRule(rule string)
	IgnorePath(pattern string) error
	IsIgnoredPath(path string) bool
}

// New builds an engine for rootDir configured from the file at
// configurationPath. A missing file means the default configuration.
func New(rootDir string, configurationPath string) (*internal.Engine, error) {
	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(rootDir, config)
}

func NewWithConfig(rootDir string, config Config) (*internal.Engine, error) {
	engine, err := internal.NewEngine(rootDir, config.Rules)
	if err != nil {
		return nil, err
	}
	for _, pattern := range config.IgnorePaths {
		if err := engine.IgnorePath(pattern); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

type processOptions struct {
	jobs     int
	progress io.Writer
}

// Option tunes ProcessPath and ProcessFiles.
type Option func(*processOptions)

// WithJobs bounds the number of files linted at once. Zero or less means GOMAXPROCS.
func WithJobs(n int) Option {
	return func(o *processOptions) { o.jobs = n }
}

// WithProgress draws a progress bar on w while a directory is processed.
// A nil writer disables it.
func WithProgress(w io.Writer) Option {
	return func(o *processOptions) { o.progress = w }
}

// TerminalProgress returns os.Stderr when it is a terminal, nil otherwise.
func TerminalProgress() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return os.Stderr
	}
	return nil
}

func newProcessOptions(opts []Option) processOptions {
	o := processOptions{jobs: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.jobs <= 0 {
		o.jobs = runtime.GOMAXPROCS(0)
	}
	return o
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	sources [][]byte,
	processor func(LintEngine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return allIssues, err
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessFiles lints every path, which may be a file or a directory. Issues
// of the paths that could be processed are returned along with the combined
// errors of the others.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	processor func(LintEngine, string) ([]tt.Issue, error),
	opts ...Option,
) ([]tt.Issue, error) {
	var (
		allIssues []tt.Issue
		errs      error
	)
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor, opts...)
		allIssues = append(allIssues, issues...)
		if err != nil {
			if ctx.Err() != nil {
				return allIssues, err
			}
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			errs = multierr.Append(errs, err)
		}
	}

	return allIssues, errs
}

// ProcessPath lints a single file or, for a directory, every Go and Gno file
// below it. Files of a directory are processed concurrently.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	processor func(LintEngine, string) ([]tt.Issue, error),
	opts ...Option,
) ([]tt.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !hasDesiredExtension(path) {
			return nil, nil
		}
		return processor(engine, path)
	}

	files, err := collectFiles(engine, path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	o := newProcessOptions(opts)
	var bar *progressbar.ProgressBar
	if o.progress != nil {
		bar = newProgressBar(o.progress, path, len(files))
	}

	var (
		mu     sync.Mutex
		issues []tt.Issue
		errs   error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(o.jobs, len(files)))

	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			fileIssues, err := processor(engine, file)
			if bar != nil {
				_ = bar.Add(1)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", file), zap.Error(err))
				}
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", file, err))
				return nil
			}
			issues = append(issues, fileIssues...)
			return nil
		})
	}

	waitErr := g.Wait()
	if bar != nil {
		_ = bar.Finish()
	}
	sortIssues(issues)

	if waitErr != nil {
		return issues, waitErr
	}
	return issues, errs
}

// collectFiles lists the lintable files below root, skipping ignored paths
// and hidden directories.
func collectFiles(engine LintEngine, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if p != root && engine.IsIgnoredPath(p) {
				return filepath.SkipDir
			}
			return nil
		}
		if hasDesiredExtension(p) && !engine.IsIgnoredPath(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	return files, nil
}

func newProgressBar(w io.Writer, description string, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func sortIssues(issues []tt.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Filename != issues[j].Filename {
			return issues[i].Filename < issues[j].Filename
		}
		return issues[i].Start.Offset < issues[j].Start.Offset
	})
}

func ProcessFile(engine LintEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine LintEngine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}

var desiredExtensions = map[string]bool{
	".go":  true,
	".gno": true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)]
}

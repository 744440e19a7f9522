package lint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnolang/selfassign/internal/types"
)

const defaultDebounce = 100 * time.Millisecond

// ReportFunc receives the issues of a file re-linted by a Watcher.
type ReportFunc func(path string, issues []tt.Issue)

// Watcher re-lints Go and Gno files when they are written.
type Watcher struct {
	engine   LintEngine
	logger   *zap.Logger
	report   ReportFunc
	debounce time.Duration

	fsw     *fsnotify.Watcher
	mu      sync.Mutex
	pending map[string]*time.Timer
}

func NewWatcher(engine LintEngine, logger *zap.Logger, report ReportFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		engine:   engine,
		logger:   logger,
		report:   report,
		debounce: defaultDebounce,
		fsw:      fsw,
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Add watches dir and every non-hidden, non-ignored directory below it.
func (w *Watcher) Add(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && (strings.HasPrefix(d.Name(), ".") || w.engine.IsIgnoredPath(p)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("error watching %s: %w", p, err)
		}
		return nil
	})
}

// Run handles file events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.Close(); err != nil {
			w.logger.Error("error closing watcher", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		// new directories are watched too; files are a no-op
		if err := w.Add(event.Name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			w.logger.Debug("not watching new path", zap.String("path", event.Name), zap.Error(err))
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !hasDesiredExtension(event.Name) || w.engine.IsIgnoredPath(event.Name) {
		return
	}
	w.schedule(event.Name)
}

// schedule lints path once no further event arrived for it within the debounce window.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.lint(path)
	})
}

func (w *Watcher) lint(path string) {
	issues, err := w.engine.Run(path)
	if err != nil {
		w.logger.Error("Error processing file", zap.String("file", path), zap.Error(err))
		return
	}
	w.logger.Info("file linted", zap.String("file", path), zap.Int("issues", len(issues)))
	if w.report != nil {
		w.report(path, issues)
	}
}

// Close cancels pending lints and releases the watcher. It is safe to call
// more than once, and Run calls it on return.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	return w.fsw.Close()
}

// Package watch re-runs an assembly when the documents of a directory change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/cl0nazepamm/P-USDExporter/assets"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 250 * time.Millisecond

var ErrBadPattern = errors.New("bad ignore pattern")

// RunFunc is called once per settled batch of changes with the changed
// paths relative to the watched directory, sorted.
type RunFunc func(ctx context.Context, changed []string) error

type Watcher struct {
	dir      string
	run      RunFunc
	logger   *slog.Logger
	debounce time.Duration
	exts     []string
	ignore   []string
	extra    []string
	skip     map[string]bool

	fsw     *fsnotify.Watcher
	pending map[string]fsnotify.Op
}

type Option func(*Watcher)

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExtensions sets the document extensions that trigger a run.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		if len(exts) == 0 {
			return
		}
		w.exts = w.exts[:0]
		for _, e := range exts {
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			w.exts = append(w.exts, strings.ToLower(e))
		}
	}
}

// WithIgnore sets the doublestar globs, relative to the directory, of paths
// that never trigger a run.
func WithIgnore(patterns ...string) Option {
	return func(w *Watcher) { w.ignore = slices.Clone(patterns) }
}

// Also makes changes to the named files at the top of the directory trigger
// a run even if they are ignored or have another extension.
func Also(names ...string) Option {
	return func(w *Watcher) { w.extra = append(w.extra, names...) }
}

// Skip excludes individual files, such as the assembly output.
func Skip(paths ...string) Option {
	return func(w *Watcher) {
		for _, p := range paths {
			w.skip[filepath.Clean(p)] = true
		}
	}
}

// New returns a watcher for dir. Nothing is watched until Run is called.
func New(dir string, run RunFunc, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		dir:      filepath.Clean(dir),
		run:      run,
		debounce: DefaultDebounce,
		exts:     slices.Clone(assets.DefaultExtensions),
		ignore:   slices.Clone(assets.DefaultIgnore),
		skip:     map[string]bool{},
		pending:  map[string]fsnotify.Op{},
	}
	for _, o := range opts {
		o(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	for _, p := range w.ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, p)
		}
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.fsw = fsw
	return w, nil
}

// Run watches until ctx is done. Errors from the RunFunc are logged and do
// not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	if err := w.addDirs(w.dir); err != nil {
		return err
	}
	w.logger.Info("watching", "dir", w.dir, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(ev) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "error", err)
		case <-timer.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.dir && w.ignored(w.rel(p)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			w.logger.Warn("cannot watch directory", "path", p, "error", err)
			return nil
		}
		w.logger.Debug("watching directory", "path", p)
		return nil
	})
}

func (w *Watcher) rel(p string) string {
	r, err := filepath.Rel(w.dir, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}

func (w *Watcher) ignored(rel string) bool {
	for _, pat := range w.ignore {
		if doublestar.MatchUnvalidated(pat, rel) {
			return true
		}
	}
	return false
}

// ignoredPath reports whether rel or one of its parent directories is
// ignored. Scans never enter ignored directories, so nothing beneath them
// counts.
func (w *Watcher) ignoredPath(rel string) bool {
	for p := rel; p != "." && p != "/" && p != ""; p = path.Dir(p) {
		if w.ignored(p) {
			return true
		}
	}
	return false
}

// relevant reports whether a change to rel should trigger a run.
func (w *Watcher) relevant(rel string) bool {
	if slices.Contains(w.extra, rel) {
		return true
	}
	if w.skip[filepath.Clean(filepath.Join(w.dir, filepath.FromSlash(rel)))] {
		return false
	}
	if w.ignoredPath(rel) {
		return false
	}
	ext := strings.ToLower(path.Ext(rel))
	if !slices.Contains(w.exts, ext) {
		return false
	}
	return !strings.HasSuffix(strings.TrimSuffix(path.Base(rel), path.Ext(rel)), assets.StageSuffix)
}

func (w *Watcher) handle(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	rel := w.rel(ev.Name)
	if ev.Has(fsnotify.Create) && !w.ignoredPath(rel) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := w.addDirs(ev.Name); err != nil {
				w.logger.Warn("cannot watch new directory", "path", ev.Name, "error", err)
			}
			// Files created before the watch was added are picked up by
			// the next run.
			w.pending[rel] |= ev.Op
			return true
		}
	}
	if !w.relevant(rel) {
		return false
	}
	w.pending[rel] |= ev.Op
	w.logger.Debug("change", "path", rel, "op", ev.Op.String())
	return true
}

func (w *Watcher) flush(ctx context.Context) {
	if len(w.pending) == 0 {
		return
	}
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	slices.Sort(changed)
	clear(w.pending)
	w.logger.Info("changes settled", "count", len(changed))
	if err := w.run(ctx, changed); err != nil {
		w.logger.Error("run failed", "error", err)
	}
}

package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/scopelint/internal/frontend"
)

// DefaultDebounce is how long the watcher waits after the last change to a
// file before analyzing it, so that one save is linted once.
const DefaultDebounce = 100 * time.Millisecond

// Watcher re-analyzes supported files under a set of directories whenever
// they change.
type Watcher struct {
	engine   *Engine
	watcher  *fsnotify.Watcher
	onResult func(Result)
	debounce time.Duration

	mu       sync.Mutex
	pending  map[string]*time.Timer
	seen     *contentCache
	wg       sync.WaitGroup
	resultMu sync.Mutex
}

// NewWatcher registers dirs and their subdirectories. onResult receives one
// Result per analyzed change; calls do not overlap.
func (e *Engine) NewWatcher(dirs []string, onResult func(Result)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	w := &Watcher{
		engine:   e,
		watcher:  fw,
		onResult: onResult,
		debounce: DefaultDebounce,
		pending:  make(map[string]*time.Timer),
		seen:     newContentCache(),
	}
	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// SetDebounce changes the quiet period. It must be called before Run.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}
	return nil
}

// Run processes file events until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.engine.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.engine.logger.Warn("cannot watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !frontend.Supported(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[event.Name]; ok && t.Stop() {
		t.Reset(w.debounce)
		return
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[event.Name] == t {
			delete(w.pending, event.Name)
		}
		w.mu.Unlock()
		w.analyze(event.Name)
	})
	w.pending[event.Name] = t
}

// analyze lints filename unless its content is the same as last time.
func (w *Watcher) analyze(filename string) {
	var res Result
	src, err := os.ReadFile(filename)
	switch {
	case err != nil:
		w.seen.forget(filename)
		res = w.engine.fail(filename, fmt.Errorf("error reading %s: %w", filename, err))
	case !w.seen.changed(filename, src):
		w.engine.logger.Debug("unit unchanged", zap.String("unit", filename))
		return
	default:
		res = w.engine.RunSource(filename, src)
	}
	if w.onResult == nil {
		return
	}
	w.resultMu.Lock()
	defer w.resultMu.Unlock()
	w.onResult(res)
}

func (w *Watcher) close() {
	w.mu.Lock()
	for name, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, name)
	}
	w.mu.Unlock()
	w.wg.Wait()
	w.watcher.Close()
}

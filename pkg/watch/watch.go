// Package watch re-reads documents when their files change on disk.
//
// A [Watcher] observes a base directory and its subdirectories with
// fsnotify. For each *.json path it keeps at most one live attempt chain:
// a newer event stops the pending timer and bumps a generation counter so
// that callbacks from an older chain are discarded. A read or parse
// failure (typically a file caught mid-write) is retried after a short
// delay a bounded number of times, then dropped until the next event.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/AbelMSG89/json-synchronized/pkg/docstore"
	"github.com/AbelMSG89/json-synchronized/pkg/jsonval"
	"github.com/AbelMSG89/json-synchronized/pkg/observability"
)

// Defaults for Options.
const (
	DefaultRetryDelay  = 100 * time.Millisecond
	DefaultMaxAttempts = 5
)

// Handler receives the outcome of processing a file event. Calls for one
// path are serialized and arrive in event order; calls for different paths
// may run concurrently.
type Handler interface {
	// Updated delivers a freshly parsed document whose root is an object.
	Updated(path string, body *jsonval.Object)

	// Invalidated reports a file that parsed but whose root is not an object.
	Invalidated(path string, reason error)

	// Removed reports a deleted or renamed-away file.
	Removed(path string)
}

// Options configures a Watcher. Zero values select the defaults.
type Options struct {
	Debounce    time.Duration // delay before the first attempt; default 0
	RetryDelay  time.Duration // delay between failed attempts
	MaxAttempts int           // attempts per event, including the first
	Logger      *log.Logger
}

type fileState struct {
	run      sync.Mutex // serializes attempts for this path
	timer    *time.Timer
	gen      uint64
	attempts int
	valid    bool
}

// Watcher turns file system events into Handler calls.
type Watcher struct {
	base    string
	handler Handler
	opts    Options
	logger  *log.Logger

	readFile func(string) ([]byte, error)

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	files   map[string]*fileState
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a watcher for base. Call Start to begin watching.
func New(base string, h Handler, opts Options) (*Watcher, error) {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolve watch dir: %w", err)
	}
	return &Watcher{
		base:     abs,
		handler:  h,
		opts:     opts,
		logger:   opts.Logger,
		readFile: os.ReadFile,
		files:    make(map[string]*fileState),
	}, nil
}

// Start begins watching base and every subdirectory. It is a no-op when
// already started.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	if w.stopped {
		return errors.New("watcher stopped")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(w.base); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", w.base, err)
	}
	w.fsw = fsw
	w.addTree(w.base)

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	w.started = true
	go w.loop(ctx, fsw, w.done)

	w.logger.Debug("watching", "dir", w.base)
	return nil
}

// Stop ends watching and cancels pending attempts. It is safe to call more
// than once and before Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.stopped {
		w.stopped = true
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.cancel()
	_ = w.fsw.Close()
	for _, st := range w.files {
		if st.timer != nil {
			st.timer.Stop()
		}
	}
	done := w.done
	w.mu.Unlock()
	<-done
}

// addTree adds every non-hidden subdirectory of root. Errors are ignored
// per directory. Callers hold w.mu.
func (w *Watcher) addTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == root {
			return nil
		}
		name := d.Name()
		if name == "node_modules" || name[0] == '.' {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Debug("cannot watch directory", "dir", path, "err", err)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.addDir(ev.Name)
			return
		}
	}
	if !docstore.IsDocumentFile(ev.Name) {
		return
	}
	observability.Watch().OnEvent(ev.Name, ev.Op.String())

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.remove(ev.Name)
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
		w.schedule(ev.Name)
	}
}

// addDir starts watching a new directory and picks up documents that were
// written into it before the watch was in place.
func (w *Watcher) addDir(dir string) {
	if base := filepath.Base(dir); base == "node_modules" || base[0] == '.' {
		return
	}
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	if err := w.fsw.Add(dir); err != nil {
		w.logger.Debug("cannot watch directory", "dir", dir, "err", err)
	}
	w.addTree(dir)
	w.mu.Unlock()

	files, err := docstore.Discover(dir)
	if err != nil {
		return
	}
	for _, f := range files {
		w.schedule(f)
	}
}

// schedule replaces any pending attempt chain for path with a new one.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	st := w.state(path)
	if st.timer != nil {
		st.timer.Stop()
	}
	st.gen++
	st.attempts = 0
	gen := st.gen
	st.timer = time.AfterFunc(w.opts.Debounce, func() { w.attempt(path, gen) })
}

func (w *Watcher) remove(path string) {
	w.mu.Lock()
	st := w.state(path)
	if st.timer != nil {
		st.timer.Stop()
	}
	st.gen++
	st.valid = false
	gen := st.gen
	w.mu.Unlock()

	st.run.Lock()
	defer st.run.Unlock()
	if !w.current(st, gen) {
		return
	}
	w.handler.Removed(path)
}

func (w *Watcher) state(path string) *fileState {
	st, ok := w.files[path]
	if !ok {
		st = &fileState{}
		w.files[path] = st
	}
	return st
}

func (w *Watcher) current(st *fileState, gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.stopped && st.gen == gen
}

// attempt reads and parses path once. Stale generations are dropped both
// before reading and before delivering.
func (w *Watcher) attempt(path string, gen uint64) {
	w.mu.Lock()
	st := w.files[path]
	w.mu.Unlock()
	if st == nil {
		return
	}

	st.run.Lock()
	defer st.run.Unlock()
	if !w.current(st, gen) {
		return
	}

	data, err := w.readFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		// a remove event follows
		return
	}
	var body *jsonval.Object
	if err == nil {
		body, err = jsonval.Parse(data)
	}

	w.mu.Lock()
	if w.stopped || st.gen != gen {
		w.mu.Unlock()
		return
	}
	st.attempts++
	n := st.attempts
	switch {
	case err == nil:
		st.valid = true
	case errors.Is(err, jsonval.ErrArrayRoot), errors.Is(err, jsonval.ErrNotObject):
		st.valid = false
	case n < w.opts.MaxAttempts:
		st.timer = time.AfterFunc(w.opts.RetryDelay, func() { w.attempt(path, gen) })
		w.mu.Unlock()
		w.logger.Debug("parse failed, retrying", "path", path, "attempt", n, "err", err)
		observability.Watch().OnRetry(path, n, err)
		return
	default:
		w.mu.Unlock()
		w.logger.Warn("giving up on file", "path", path, "attempts", n, "err", err)
		observability.Watch().OnGiveUp(path, n, err)
		return
	}
	w.mu.Unlock()

	if err != nil {
		w.handler.Invalidated(path, err)
		return
	}
	w.handler.Updated(path, body)
}

// Valid reports the last known validity of path.
func (w *Watcher) Valid(path string) (valid, known bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.files[path]
	if !ok {
		return false, false
	}
	return st.valid, true
}

// Package watcher monitors a loaded shared object on disk.
//
// A mapped library keeps executing the code that was loaded, so a rebuild or
// replacement of the file is not picked up. The watcher reports such changes
// so the host can warn about them; it never triggers a reload.
//
// fsnotify watches the file's parent directory and events are filtered to the
// one file, which survives editors and linkers that replace the file by
// rename.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed = errors.New("watcher is closed")
	ErrPathNotExist  = errors.New("path does not exist")
)

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates the file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was written to.
	OpWrite
	// OpRemove indicates the file was removed.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
	// OpChmod indicates file attributes were changed.
	OpChmod
)

var opNames = []struct {
	op   Op
	name string
}{
	{OpCreate, "CREATE"},
	{OpWrite, "WRITE"},
	{OpRemove, "REMOVE"},
	{OpRename, "RENAME"},
	{OpChmod, "CHMOD"},
}

// String returns the operations joined by "|".
func (op Op) String() string {
	var parts []string
	for _, n := range opNames {
		if op.Has(n.op) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, "|")
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event represents a change to the watched file.
type Event struct {
	// Path is the absolute path of the watched file.
	Path string
	// Op holds every operation observed, merged when debouncing.
	Op Op
	// Time is when the event was delivered.
	Time time.Time
}

// Handler receives change events.
type Handler func(Event)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce merges events arriving within d into one delivery.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithErrorHandler receives errors reported by the underlying notifier.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher reports changes to a single file.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	path     string
	handlers []Handler
	onError  func(error)

	debounce time.Duration
	pending  Op
	timer    *time.Timer

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// New starts watching the file at path.
func New(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotExist, absPath)
		}
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		path:    absPath,
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.processLoop()

	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// OnChange registers a handler. Handlers run on the watcher's goroutine.
func (w *Watcher) OnChange(h Handler) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	w.handlers = append(w.handlers, h)
	return nil
}

// Close stops the watcher. Pending debounced events are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = 0
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// handleFSEvent filters an fsnotify event to the watched file.
func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}

	if w.debounce <= 0 {
		w.dispatch(op)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending |= op
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.flush)
	}
}

// flush delivers the merged pending operations.
func (w *Watcher) flush() {
	w.mu.Lock()
	op := w.pending
	w.pending = 0
	w.timer = nil
	w.mu.Unlock()

	if op != 0 {
		w.dispatch(op)
	}
}

// dispatch calls every handler, recovering panics so one bad handler
// doesn't stop the others.
func (w *Watcher) dispatch(op Op) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	event := Event{Path: w.path, Op: op, Time: time.Now()}
	for _, h := range handlers {
		w.safeCall(h, event)
	}
}

func (w *Watcher) safeCall(h Handler, event Event) {
	defer func() {
		if r := recover(); r != nil && w.onError != nil {
			w.onError(fmt.Errorf("watcher handler panic: %v\n%s", r, debug.Stack()))
		}
	}()
	h(event)
}

// convertOp converts fsnotify.Op to watcher.Op.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	if fsOp.Has(fsnotify.Chmod) {
		op |= OpChmod
	}
	return op
}

package dl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// Library is one opened dynamic shared object.
//
// Library is safe for concurrent use. The native mapping is never mutated
// after Open; Close is the only writer.
type Library struct {
	mu     sync.RWMutex
	path   string
	handle uintptr
	closed bool

	// calls currently executing code from this library
	inflight atomic.Int64
}

// Option configures how a library is opened.
type Option func(*openOptions)

type openOptions struct {
	lazy   bool
	global bool
}

// WithLazyBinding resolves function references on first call instead of at
// load time. Missing transitive symbols then surface when called, not in Open.
func WithLazyBinding() Option {
	return func(o *openOptions) {
		o.lazy = true
	}
}

// WithGlobalSymbols makes the library's exports available to libraries
// loaded after it.
func WithGlobalSymbols() Option {
	return func(o *openOptions) {
		o.global = true
	}
}

// Open maps the shared object at path.
//
// A path that does not exist, or names a directory, fails with ErrNotFound
// before the dynamic loader is touched. A loader rejection fails with a
// *LoadError. Loading may run the object's static initializers.
func Open(path string, opts ...Option) (*Library, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	// dlopen treats a name without a slash as a search key, not a file.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	handle, err := dlopen(absPath, o)
	if err != nil {
		return nil, err
	}

	return &Library{path: absPath, handle: handle}, nil
}

// Path returns the absolute path the library was opened from.
func (l *Library) Path() string {
	return l.path
}

// Handle returns the native handle, or 0 after Close.
func (l *Library) Handle() uintptr {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.handle
}

// Lookup returns the address of the exported symbol name.
func (l *Library) Lookup(name string) (uintptr, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return 0, ErrClosed
	}

	addr, err := dlsym(l.handle, name)
	if err != nil {
		return 0, &SymbolError{Path: l.path, Symbol: name, Reason: err.Error()}
	}
	if addr == 0 {
		return 0, &SymbolError{Path: l.path, Symbol: name}
	}
	return addr, nil
}

// Has reports whether the export table contains name.
func (l *Library) Has(name string) bool {
	_, err := l.Lookup(name)
	return err == nil
}

// Bind looks up name and binds it to the function variable fptr points to.
//
// fptr must be a non-nil pointer to a func variable whose parameter and
// result types the FFI layer can marshal (integers, floats, bool, string,
// uintptr, unsafe.Pointer). String parameters are passed as freshly
// allocated NUL-terminated copies; string results are copied out of the
// returned C string, which is not freed.
func (l *Library) Bind(name string, fptr any) error {
	addr, err := l.Lookup(name)
	if err != nil {
		return err
	}
	return bindAddr(name, fptr, addr)
}

// Retain records a call about to execute code from the library.
// Every successful Retain must be paired with Release.
func (l *Library) Retain() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return ErrClosed
	}
	l.inflight.Add(1)
	return nil
}

// Release ends a call recorded by Retain.
func (l *Library) Release() {
	if l.inflight.Add(-1) < 0 {
		panic("dl: Release without matching Retain")
	}
}

// InFlight returns the number of outstanding retentions.
func (l *Library) InFlight() int64 {
	return l.inflight.Load()
}

// Close unmaps the library. Every symbol bound from it becomes invalid.
//
// The caller must not close a library whose code may still be executing.
// Close returns ErrInUse, and leaves the mapping in place, when retentions
// are outstanding. Closing an already closed library is a no-op.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	if n := l.inflight.Load(); n > 0 {
		return fmt.Errorf("close %s: %w (%d)", l.path, ErrInUse, n)
	}

	if err := dlclose(l.handle); err != nil {
		return fmt.Errorf("close %s: %w", l.path, err)
	}
	l.handle = 0
	l.closed = true
	return nil
}

// bindAddr wraps the FFI registration, which panics on unsupported types.
func bindAddr(name string, fptr any, addr uintptr) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bind %q: %v", name, r)
		}
	}()
	registerFunc(fptr, addr)
	return nil
}

package foreign

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var errFakeClosed = errors.New("fake library closed")

// fakeExports binds Go funcs in place of native symbols.
type fakeExports struct {
	mu       sync.Mutex
	path     string
	funcs    map[string]any
	inflight int
	closed   bool
	bindErr  error
}

func newFakeExports(funcs map[string]any) *fakeExports {
	return &fakeExports{path: "/fake/libservice.so", funcs: funcs}
}

func (f *fakeExports) Path() string { return f.path }

func (f *fakeExports) Has(name string) bool {
	_, ok := f.funcs[name]
	return ok
}

func (f *fakeExports) Bind(name string, fptr any) error {
	if f.bindErr != nil {
		return f.bindErr
	}
	fn, ok := f.funcs[name]
	if !ok {
		return fmt.Errorf("no symbol %q", name)
	}
	dst := reflect.ValueOf(fptr).Elem()
	src := reflect.ValueOf(fn)
	if src.Type() != dst.Type() {
		return fmt.Errorf("symbol %q is %s, bound as %s", name, src.Type(), dst.Type())
	}
	dst.Set(src)
	return nil
}

func (f *fakeExports) Retain() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errFakeClosed
	}
	f.inflight++
	return nil
}

func (f *fakeExports) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--
}

func (f *fakeExports) InFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inflight
}

// recordLogger captures formatted log lines.
type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordLogger) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(msg, args...))
}

func (l *recordLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args...) }
func (l *recordLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args...) }
func (l *recordLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args...) }
func (l *recordLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args...) }

func (l *recordLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.lines...)
}

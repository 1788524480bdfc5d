package dl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/crossload/internal/dl/dltest"
)

func TestOpenNotFound(t *testing.T) {
	paths := []string{
		filepath.Join(t.TempDir(), "missing.so"),
		"./definitely-not-here.so",
		t.TempDir(), // a directory is not a loadable file
	}

	for _, p := range paths {
		lib, err := Open(p)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Open(%q) error = %v, want ErrNotFound", p, err)
		}
		if lib != nil {
			t.Errorf("Open(%q) returned a library", p)
		}
	}
}

func TestOpenCorruptObject(t *testing.T) {
	dltest.RequireLoader(t)

	path := filepath.Join(t.TempDir(), "libcorrupt.so")
	if err := os.WriteFile(path, []byte("this is not an ELF or Mach-O object"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path)
	if !errors.Is(err, ErrLoadFailure) {
		t.Fatalf("Open() error = %v, want ErrLoadFailure", err)
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Open() error = %T, want *LoadError", err)
	}
	if loadErr.Reason == "" {
		t.Error("LoadError.Reason is empty, want loader diagnostic")
	}
}

func TestOpenRelativePath(t *testing.T) {
	path := dltest.Build(t, "testdata/counter.c")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(filepath.Dir(path)); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	lib, err := Open(filepath.Base(path))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer lib.Close()

	if !filepath.IsAbs(lib.Path()) {
		t.Errorf("Path() = %q, want absolute", lib.Path())
	}
}

func TestLookup(t *testing.T) {
	lib, err := Open(dltest.Build(t, "testdata/counter.c"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer lib.Close()

	if !lib.Has("Main") {
		t.Error("Has(Main) = false, want true")
	}
	if lib.Has("MainWithPlugin") {
		t.Error("Has(MainWithPlugin) = true, want false")
	}

	_, err = lib.Lookup("MainWithPlugin")
	if !errors.Is(err, ErrSymbolNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrSymbolNotFound", err)
	}
	var symErr *SymbolError
	if !errors.As(err, &symErr) || symErr.Symbol != "MainWithPlugin" {
		t.Errorf("Lookup() error = %v, want SymbolError naming MainWithPlugin", err)
	}
}

func TestResolveAndCall(t *testing.T) {
	lib, err := Open(dltest.Build(t, "testdata/counter.c"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer lib.Close()

	add, err := Resolve[func(int32, int32) int32](lib, "Add")
	if err != nil {
		t.Fatalf("Resolve(Add) error = %v", err)
	}
	if got := add.Func(2, 40); got != 42 {
		t.Errorf("Add(2, 40) = %d, want 42", got)
	}
	if add.Library() != lib {
		t.Error("Symbol.Library() returned wrong library")
	}

	var info func() string
	if err := lib.Bind("GetRuntimeInfo", &info); err != nil {
		t.Fatalf("Bind(GetRuntimeInfo) error = %v", err)
	}
	if got := info(); got != "counter fixture" {
		t.Errorf("GetRuntimeInfo() = %q, want %q", got, "counter fixture")
	}
}

func TestBindInvalidTarget(t *testing.T) {
	lib, err := Open(dltest.Build(t, "testdata/counter.c"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer lib.Close()

	var notAFunc int
	if err := lib.Bind("Main", &notAFunc); err == nil {
		t.Error("Bind() into *int succeeded, want error")
	}
}

func TestCloseWhileInFlight(t *testing.T) {
	lib, err := Open(dltest.Build(t, "testdata/counter.c"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := lib.Retain(); err != nil {
		t.Fatalf("Retain() error = %v", err)
	}

	if err := lib.Close(); !errors.Is(err, ErrInUse) {
		t.Fatalf("Close() with call in flight error = %v, want ErrInUse", err)
	}
	if lib.Handle() == 0 {
		t.Fatal("refused Close() still unmapped the library")
	}
	if !lib.Has("Main") {
		t.Error("symbols unavailable after refused Close()")
	}

	lib.Release()
	if err := lib.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := lib.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}

	if _, err := lib.Lookup("Main"); !errors.Is(err, ErrClosed) {
		t.Errorf("Lookup() after Close error = %v, want ErrClosed", err)
	}
	if err := lib.Retain(); !errors.Is(err, ErrClosed) {
		t.Errorf("Retain() after Close error = %v, want ErrClosed", err)
	}
}

func TestReleaseWithoutRetainPanics(t *testing.T) {
	lib := &Library{}

	defer func() {
		if recover() == nil {
			t.Error("Release() without Retain did not panic")
		}
	}()
	lib.Release()
}

func TestOpenOptions(t *testing.T) {
	path := dltest.Build(t, "testdata/counter.c")

	lib, err := Open(path, WithLazyBinding(), WithGlobalSymbols())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer lib.Close()

	var mainFn func()
	if err := lib.Bind("Main", &mainFn); err != nil {
		t.Fatalf("Bind(Main) error = %v", err)
	}
	mainFn()

	calls, err := Resolve[func() int32](lib, "Calls")
	if err != nil {
		t.Fatalf("Resolve(Calls) error = %v", err)
	}
	if got := calls.Func(); got != 1 {
		t.Errorf("Calls() = %d, want 1", got)
	}
}

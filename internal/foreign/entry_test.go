package foreign

import (
	"errors"
	"strings"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindPlain, "plain"},
		{KindRich, "rich"},
		{Kind(0), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestSelectPlainOnly(t *testing.T) {
	calls := 0
	exports := newFakeExports(map[string]any{
		"Main": func() { calls++ },
	})

	e, err := Select(exports, DefaultSymbols(), "/tmp/plugin.bin")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if e.Kind != KindPlain || e.Symbol != "Main" {
		t.Errorf("Select() = %s %s, want plain Main", e.Kind, e.Symbol)
	}
	if e.PluginPath != "" {
		t.Errorf("plain entry point kept plugin path %q", e.PluginPath)
	}

	if code := e.call(); code != 0 {
		t.Errorf("call() = %d, want 0", code)
	}
	if calls != 1 {
		t.Errorf("Main called %d times, want 1", calls)
	}
}

func TestSelectPrefersRich(t *testing.T) {
	var gotPath string
	plainCalled := false
	exports := newFakeExports(map[string]any{
		"Main":           func() { plainCalled = true },
		"MainWithPlugin": func(p string) { gotPath = p },
	})

	e, err := Select(exports, DefaultSymbols(), "/tmp/plugin.bin")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if e.Kind != KindRich || e.Symbol != "MainWithPlugin" {
		t.Fatalf("Select() = %s %s, want rich MainWithPlugin", e.Kind, e.Symbol)
	}

	e.call()
	if gotPath != "/tmp/plugin.bin" {
		t.Errorf("rich entry point received %q, want %q", gotPath, "/tmp/plugin.bin")
	}
	if plainCalled {
		t.Error("plain entry point called although rich was selected")
	}
}

func TestSelectRequiredSymbolMissing(t *testing.T) {
	exports := newFakeExports(map[string]any{
		"Unrelated": func() int32 { return 0 },
	})

	_, err := Select(exports, DefaultSymbols(), "")
	if !errors.Is(err, ErrRequiredSymbolMissing) {
		t.Fatalf("Select() error = %v, want ErrRequiredSymbolMissing", err)
	}
	for _, name := range []string{"Main", "MainWithPlugin", exports.Path()} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %q", err, name)
		}
	}
}

func TestSelectCustomNamesAndStatus(t *testing.T) {
	exports := newFakeExports(map[string]any{
		"LoadAndCallPlugin": func(p string) int32 {
			if p == "./go-plugin/plugin.so" {
				return 0
			}
			return 1
		},
	})
	symbols := Symbols{Rich: "LoadAndCallPlugin", RichStatus: true}

	e, err := Select(exports, symbols, "./go-plugin/plugin.so")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if !e.ReportsStatus {
		t.Error("ReportsStatus = false, want true")
	}
	if code := e.call(); code != 0 {
		t.Errorf("call() = %d, want 0", code)
	}

	e.PluginPath = "elsewhere"
	if code := e.call(); code != 1 {
		t.Errorf("call() = %d, want 1", code)
	}
}

func TestSelectPlainStatus(t *testing.T) {
	exports := newFakeExports(map[string]any{
		"Run": func() int32 { return 3 },
	})

	e, err := Select(exports, Symbols{Plain: "Run", PlainStatus: true}, "")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if code := e.call(); code != 3 {
		t.Errorf("call() = %d, want 3", code)
	}
}

func TestSelectRejectsNULPath(t *testing.T) {
	exports := newFakeExports(map[string]any{
		"MainWithPlugin": func(string) {},
	})

	_, err := Select(exports, DefaultSymbols(), "/tmp/a\x00b")
	if !errors.Is(err, ErrInvalidPluginPath) {
		t.Errorf("Select() error = %v, want ErrInvalidPluginPath", err)
	}
}

func TestSelectBindFailure(t *testing.T) {
	exports := newFakeExports(map[string]any{
		"Main": func() {},
	})
	exports.bindErr = errors.New("bad signature")

	_, err := Select(exports, DefaultSymbols(), "")
	if err == nil || !strings.Contains(err.Error(), "bad signature") {
		t.Errorf("Select() error = %v, want bind failure", err)
	}
}

func TestEntryPointUnboundPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("call() on unbound entry point did not panic")
		}
	}()
	(&EntryPoint{Symbol: "Main"}).call()
}

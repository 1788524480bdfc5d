// Package dltest builds native test fixtures for code that loads shared
// libraries.
package dltest

import (
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// Build compiles the C source at src into a shared object in a temporary
// directory and returns its path. The test is skipped when no C compiler is
// available or the platform has no dynamic loader binding.
func Build(t testing.TB, src string) string {
	t.Helper()
	RequireLoader(t)

	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("no C compiler available for native fixtures")
	}

	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	out := filepath.Join(t.TempDir(), "lib"+name+".so")

	cmd := exec.Command(cc, "-shared", "-fPIC", "-o", out, src)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("compile %s: %v\n%s", src, err, output)
	}
	return out
}

// RequireLoader skips the test on platforms without a dynamic loader binding.
func RequireLoader(t testing.TB) {
	t.Helper()

	switch runtime.GOOS {
	case "darwin", "freebsd", "linux":
	default:
		t.Skipf("dynamic loading not supported on %s", runtime.GOOS)
	}
}

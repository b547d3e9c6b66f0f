package acceptance

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var binaryPath string

// TestMain resolves the cliner binary built by `make build`
func TestMain(m *testing.M) {
	if abs, err := filepath.Abs("../../bin/cliner"); err == nil {
		binaryPath = abs
	}
	code := m.Run()
	os.Exit(code)
}

// cliner returns a command running the binary in dir with an isolated home
// so no user or global configuration leaks in.
func cliner(t *testing.T, dir string, args ...string) *exec.Cmd {
	t.Helper()
	if _, err := os.Stat(binaryPath); err != nil {
		t.Skipf("cliner binary not found at %s, build it with `go build -o bin/cliner ./cmd/cliner`", binaryPath)
	}

	home := t.TempDir()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, ".config"),
		"NO_COLOR=1",
	)
	return cmd
}

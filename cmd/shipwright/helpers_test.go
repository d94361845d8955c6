package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testWorkspace = `[workspace]
resolver = "2"
members = [
    "core",
    "sideko",
    "sideko-py",
]
`

// runInDir runs testFunc with the working directory set to dir.
func runInDir(t *testing.T, dir string, testFunc func()) {
	t.Helper()
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() {
		if err := os.Chdir(oldDir); err != nil {
			t.Errorf("failed to restore dir: %v", err)
		}
	}()
	testFunc()
}

// runGit runs a git command in the given directory and returns its output.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, rel))
	require.NoError(t, err)
	return string(data)
}

// isolateConfig keeps user-level config and env files out of the test.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("SHIPWRIGHT_CONFIG_HOME", t.TempDir())
	t.Setenv("SHIPWRIGHT_CONFIG_PATH", "")
}

// newCargoRepo creates a committed repository with the default layout and a
// docs generator that needs nothing but sh.
func newCargoRepo(t *testing.T) string {
	t.Helper()
	isolateConfig(t)

	dir := t.TempDir()
	runGit(t, dir, "init", "--initial-branch=main")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")

	writeFile(t, dir, "Cargo.toml", testWorkspace)
	writeFile(t, dir, "Cargo.lock", "# lock\n")
	writeFile(t, dir, "sideko/Cargo.toml", "[package]\nname = \"sideko\"\nversion = \"1.0.0\"\n")
	writeFile(t, dir, "sideko-py/Cargo.toml", "[package]\nname = \"sideko-py\"\nversion = \"1.0.0\"\n")
	writeFile(t, dir, "docs/CLI.md", "# CLI 1.0.0\n")
	writeFile(t, dir, "shipwright.yaml", `docs:
  dir: docs
  command: [sh, -c, "echo '# CLI next' > CLI.md"]
  output: docs/CLI.md
`)
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-m", "initial")
	return dir
}

// addRemote creates a bare remote and pushes main to it with upstream set.
func addRemote(t *testing.T, dir string) string {
	t.Helper()
	remote := t.TempDir()
	runGit(t, remote, "init", "--bare", "--initial-branch=main")
	runGit(t, dir, "remote", "add", "origin", remote)
	runGit(t, dir, "push", "-u", "origin", "main")
	return remote
}

// execute runs the root command with args in dir, feeding stdin.
func execute(t *testing.T, dir, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	var err error
	runInDir(t, dir, func() {
		cmd := newRootCmd()
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(args)
		err = cmd.ExecuteContext(context.Background())
	})
	return stdout.String(), stderr.String(), err
}

// Package docs regenerates the CLI reference documentation before a release.
package docs

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/gorewood/shipwright/internal/output"
	"github.com/gorewood/shipwright/internal/shell"
)

// Generator runs a documentation build command and reports the produced file.
type Generator struct {
	runner  shell.Runner
	root    string
	dir     string
	command []string
	output  string
}

// NewGenerator creates a Generator. dir and out are relative to root;
// command is the argv run in dir.
func NewGenerator(runner shell.Runner, root, dir string, command []string, out string) *Generator {
	return &Generator{runner: runner, root: root, dir: dir, command: command, output: out}
}

// Enabled reports whether a generator command is configured.
func (g *Generator) Enabled() bool {
	return len(g.command) > 0
}

// Command renders the generator command line.
func (g *Generator) Command() string {
	if !g.Enabled() {
		return ""
	}
	return shell.Display(g.command[0], g.command[1:]...)
}

// Check confirms a command is configured and its working directory exists,
// without running anything.
func (g *Generator) Check() error {
	if !g.Enabled() {
		return output.NewUserError("no documentation command configured")
	}
	if info, err := os.Stat(filepath.Join(g.root, g.dir)); err != nil || !info.IsDir() {
		return output.NewUserError(g.dir + " not found")
	}
	return nil
}

// Generate runs the command and returns the output path relative to root.
// A command that succeeds without producing the output file is a system error.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	if err := g.Check(); err != nil {
		return "", err
	}

	if _, err := g.runner.Run(ctx, filepath.Join(g.root, g.dir), g.command[0], g.command[1:]...); err != nil {
		return "", err
	}

	if _, err := os.Stat(filepath.Join(g.root, g.output)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", output.NewSystemError(g.Command() + " did not produce " + g.output)
		}
		return "", output.NewSystemErrorWithCause("failed to stat "+g.output, err)
	}
	return g.output, nil
}

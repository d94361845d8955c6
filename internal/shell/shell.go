// Package shell runs external executables for the shipwright CLI.
//
// Commands are spawned directly (no shell interpretation) with an explicit
// working directory. Stdout is returned trimmed; stderr is folded into the
// returned error so a failed step reports why it failed.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gorewood/shipwright/internal/output"
)

// Runner executes a named program with arguments in dir.
// An empty dir means the current working directory.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// Exec is the os/exec backed [Runner].
type Exec struct {
	logger *zap.Logger
}

// NewExec creates an Exec that traces each invocation to logger.
// A nil logger disables tracing.
func NewExec(logger *zap.Logger) *Exec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exec{logger: logger}
}

// Run executes the command and returns its trimmed stdout.
// Returns an *output.ExitError with ExitSystemError when the executable is
// missing or exits non-zero.
func (e *Exec) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	e.logger.Debug("ran command",
		zap.String("name", name),
		zap.Strings("args", args),
		zap.String("dir", dir),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)

	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", output.NewSystemErrorWithCause(name+" not found: ensure it is installed and in PATH", err)
		}

		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", output.NewSystemErrorWithCause("error executing command: "+Display(name, args...)+": "+errMsg, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Display renders a command line for messages and logs.
// Arguments containing spaces are double quoted.
func Display(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, arg := range args {
		if strings.ContainsAny(arg, " \t") {
			arg = `"` + arg + `"`
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

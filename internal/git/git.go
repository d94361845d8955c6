// Package git provides the version-control operations of a release run.
package git

import (
	"context"

	"github.com/gorewood/shipwright/internal/output"
	"github.com/gorewood/shipwright/internal/shell"
)

// Client runs git subcommands in a working tree through a [shell.Runner].
// Every mutating call is a single git invocation; nothing is retried.
type Client struct {
	runner shell.Runner
	dir    string
}

// NewClient creates a Client rooted at dir.
func NewClient(runner shell.Runner, dir string) *Client {
	return &Client{runner: runner, dir: dir}
}

// Run executes git with the given arguments in the client's directory.
// It returns trimmed stdout or an *output.ExitError with ExitSystemError.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	return c.runner.Run(ctx, c.dir, "git", args...)
}

// Diff returns the unstaged diff limited to paths.
func (c *Client) Diff(ctx context.Context, paths ...string) (string, error) {
	return c.Run(ctx, append([]string{"diff", "--"}, paths...)...)
}

// Add stages paths.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return output.NewUserError("git add: no paths given")
	}
	_, err := c.Run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// Commit records the staged changes with message.
func (c *Client) Commit(ctx context.Context, message string) error {
	_, err := c.Run(ctx, "commit", "-m", message)
	return err
}

// Push pushes the current branch to its upstream.
func (c *Client) Push(ctx context.Context) error {
	_, err := c.Run(ctx, "push")
	return err
}

// Tag creates a lightweight tag at HEAD.
func (c *Client) Tag(ctx context.Context, name string) error {
	_, err := c.Run(ctx, "tag", name)
	return err
}

// PushTag pushes a single tag to remote.
func (c *Client) PushTag(ctx context.Context, remote, name string) error {
	_, err := c.Run(ctx, "push", remote, name)
	return err
}

// Restore discards working tree changes to paths, returning them to their
// committed state.
func (c *Client) Restore(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := c.Run(ctx, append([]string{"restore", "--"}, paths...)...)
	return err
}

// Package trigger starts the downstream packaging workflow after the
// package-specific release commit has been pushed.
//
// Two transports are supported: the GitHub CLI ([GH]) and the GitHub REST
// workflow_dispatch endpoint ([API]).
package trigger

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/gorewood/shipwright/internal/output"
	"github.com/gorewood/shipwright/internal/shell"
)

// Trigger starts a workflow run.
type Trigger interface {
	Trigger(ctx context.Context) error
	// Describe renders what Trigger will do, for the run log.
	Describe() string
}

// GH triggers a workflow with `gh workflow run`.
type GH struct {
	runner shell.Runner
	dir    string
	file   string
}

// NewGH creates a GH trigger for the workflow file, run in dir.
func NewGH(runner shell.Runner, dir, file string) *GH {
	return &GH{runner: runner, dir: dir, file: file}
}

// Trigger runs gh workflow run.
func (g *GH) Trigger(ctx context.Context) error {
	_, err := g.runner.Run(ctx, g.dir, "gh", "workflow", "run", g.file)
	return err
}

// Describe returns the gh command line.
func (g *GH) Describe() string {
	return shell.Display("gh", "workflow", "run", g.file)
}

// API triggers a workflow through the REST workflow_dispatch endpoint.
type API struct {
	client *github.Client
	owner  string
	repo   string
	file   string
	ref    string
}

// NewGitHubClient creates a GitHub client authenticated with a static token.
func NewGitHubClient(ctx context.Context, token string) (*github.Client, error) {
	if token == "" {
		return nil, output.NewUserError("GitHub token not set")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return github.NewClient(tc), nil
}

// NewAPI creates an API trigger dispatching file on ref in owner/repo.
func NewAPI(client *github.Client, owner, repo, file, ref string) *API {
	return &API{client: client, owner: owner, repo: repo, file: file, ref: ref}
}

// Trigger sends the workflow_dispatch event.
func (a *API) Trigger(ctx context.Context) error {
	if a.ref == "" {
		return output.NewUserError("cannot dispatch workflow: no branch checked out")
	}

	_, err := a.client.Actions.CreateWorkflowDispatchEventByFileName(ctx, a.owner, a.repo, a.file,
		github.CreateWorkflowDispatchEventRequest{Ref: a.ref})
	if err != nil {
		return output.NewSystemErrorWithCause(
			fmt.Sprintf("failed to dispatch %s on %s/%s", a.file, a.owner, a.repo), err)
	}
	return nil
}

// Describe names the workflow, repository, and ref.
func (a *API) Describe() string {
	return fmt.Sprintf("dispatch %s on %s/%s@%s", a.file, a.owner, a.repo, a.ref)
}

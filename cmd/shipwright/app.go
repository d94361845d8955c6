package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gorewood/shipwright/internal/config"
	"github.com/gorewood/shipwright/internal/docs"
	"github.com/gorewood/shipwright/internal/git"
	"github.com/gorewood/shipwright/internal/output"
	"github.com/gorewood/shipwright/internal/shell"
	"github.com/gorewood/shipwright/internal/trigger"
)

// app bundles what every repository command needs: the repository, its
// root, the loaded configuration, and the logger.
type app struct {
	repo       *git.Repo
	root       string
	cfg        *config.Config
	configFile string
	logger     *zap.Logger
	runner     shell.Runner
}

// newApp opens the repository containing the working directory and loads
// configuration from its root.
func newApp(cmd *cobra.Command) (*app, error) {
	repo, err := git.Open(".")
	if err != nil {
		return nil, err
	}
	root, err := repo.Root()
	if err != nil {
		return nil, err
	}

	loader := config.NewLoader()
	cfg, err := loader.LoadIn(root)
	if err != nil {
		return nil, output.NewUserErrorWithCause("failed to load configuration", err)
	}

	logger := newLogger(cmd)
	logger.Debug("loaded configuration", zap.String("root", root), zap.String("file", loader.ConfigFileUsed()))

	return &app{
		repo:       repo,
		root:       root,
		cfg:        cfg,
		configFile: loader.ConfigFileUsed(),
		logger:     logger,
		runner:     shell.NewExec(logger),
	}, nil
}

func (a *app) gitClient() *git.Client {
	return git.NewClient(a.runner, a.root)
}

func (a *app) docsGenerator() *docs.Generator {
	d := a.cfg.Docs
	return docs.NewGenerator(a.runner, a.root, d.Dir, d.Command, d.Output)
}

// newTrigger builds the workflow trigger for the configured mode. API mode
// resolves its token, repository, and branch up front so a misconfiguration
// fails before anything is written.
func (a *app) newTrigger(ctx context.Context) (trigger.Trigger, error) {
	wf := a.cfg.Workflow
	if wf.Mode != config.TriggerAPI {
		return trigger.NewGH(a.runner, a.root, wf.File), nil
	}

	owner, name, err := a.repository()
	if err != nil {
		return nil, err
	}
	branch, err := a.repo.CurrentBranch()
	if err != nil {
		return nil, err
	}
	if branch == "" {
		return nil, output.NewUserError("workflow.mode api needs a checked out branch; HEAD is detached")
	}
	client, err := trigger.NewGitHubClient(ctx, os.Getenv(wf.TokenEnv))
	if err != nil {
		return nil, output.NewUserError("workflow.mode api needs a token in $" + wf.TokenEnv)
	}
	return trigger.NewAPI(client, owner, name, wf.File, branch), nil
}

// repository returns the configured owner/name or derives it from the remote.
func (a *app) repository() (owner, name string, err error) {
	if r := a.cfg.Workflow.Repository; r != "" {
		owner, name, ok := strings.Cut(r, "/")
		if !ok {
			return "", "", output.NewUserError("invalid workflow.repository: " + r)
		}
		return owner, name, nil
	}
	return a.repo.RemoteRepository(a.cfg.Git.Remote)
}

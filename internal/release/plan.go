package release

import (
	"fmt"
	"strings"

	"github.com/gorewood/shipwright/internal/config"
	"github.com/gorewood/shipwright/internal/shell"
)

// Gate describes what an operator decline does at a step.
type Gate string

const (
	// GateNone marks a step that runs without asking.
	GateNone Gate = ""
	// GateAbort marks a step whose decline reverts changes and aborts.
	GateAbort Gate = "abort"
	// GateSkip marks a step whose decline skips it and continues.
	GateSkip Gate = "skip"
)

// Step is one entry of a release plan.
type Step struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Command string `json:"command,omitempty"`
	Gate    Gate   `json:"gate,omitempty"`
}

// Plan returns the ordered steps a release of version performs under cfg.
// It has no side effects.
func Plan(cfg *config.Config, version string) ([]Step, error) {
	msgs, err := messages(cfg, version)
	if err != nil {
		return nil, err
	}

	tag := cfg.TagName(version)
	ws := cfg.Workspace.File
	member := cfg.Workspace.Member

	var steps []Step
	add := func(title, command string, gate Gate) {
		steps = append(steps, Step{Number: len(steps) + 1, Title: title, Command: command, Gate: gate})
	}

	add("Bump version to "+version+" in "+strings.Join(cfg.VersionFiles, ", "), "", GateNone)
	add("Remove "+member+" from "+ws, "", GateNone)
	if cfg.Docs.Enabled() {
		add("Regenerate "+cfg.Docs.Output, docsCommand(cfg), GateNone)
	}
	add("Review changes", "", GateAbort)
	add("Commit and push changes", commitCommand(msgs.prepare), GateNone)
	add("Tag and push "+tag, shell.Display("git", "tag", tag)+" && "+shell.Display("git", "push", cfg.Git.Remote, tag), GateSkip)
	add("Restore "+member+" to "+ws, "", GateAbort)
	add("Push updated "+ws, commitCommand(msgs.include), GateNone)
	add("Trigger GitHub workflow", workflowCommand(cfg), GateSkip)
	add("Remove "+member+" from "+ws, "", GateAbort)
	add("Push final changes", commitCommand(msgs.exclude), GateNone)
	return steps, nil
}

type commitMessages struct {
	prepare string
	include string
	exclude string
}

func messages(cfg *config.Config, version string) (commitMessages, error) {
	var msgs commitMessages
	var err error
	if msgs.prepare, err = cfg.CommitMessage(config.CommitPrepare, version); err != nil {
		return msgs, err
	}
	if msgs.include, err = cfg.CommitMessage(config.CommitInclude, version); err != nil {
		return msgs, err
	}
	if msgs.exclude, err = cfg.CommitMessage(config.CommitExclude, version); err != nil {
		return msgs, err
	}
	return msgs, nil
}

func commitCommand(message string) string {
	return fmt.Sprintf("git commit -m %q && git push", message)
}

func docsCommand(cfg *config.Config) string {
	return "cd " + cfg.Docs.Dir + " && " + shell.Display(cfg.Docs.Command[0], cfg.Docs.Command[1:]...)
}

func workflowCommand(cfg *config.Config) string {
	if cfg.Workflow.Mode == config.TriggerAPI {
		return "POST workflow_dispatch " + cfg.Workflow.File
	}
	return shell.Display("gh", "workflow", "run", cfg.Workflow.File)
}

package release

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gorewood/shipwright/internal/config"
	"github.com/gorewood/shipwright/internal/git"
	"github.com/gorewood/shipwright/internal/output"
	"github.com/gorewood/shipwright/internal/prompt"
	"github.com/gorewood/shipwright/internal/shell"
)

const workspaceManifest = `[workspace]
resolver = "2"
members = [
    "core",
    "sideko",
    "sideko-py",
]
`

const excludedManifest = `[workspace]
resolver = "2"
members = ["core", "sideko"]
`

type fakeInspector struct {
	tags      map[string]bool
	modified  []string
	untracked map[string]bool
	err       error
}

func (f *fakeInspector) TagExists(name string) (bool, error) { return f.tags[name], f.err }
func (f *fakeInspector) ModifiedFiles() ([]string, error) { return f.modified, nil }
func (f *fakeInspector) Tracked(path string) (bool, error) { return !f.untracked[path], nil }

type fakeDocs struct {
	root     string
	calls    int
	checkErr error
	err      error
}

func (f *fakeDocs) Check() error { return f.checkErr }

func (f *fakeDocs) Generate(context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "docs/CLI.md", os.WriteFile(filepath.Join(f.root, "docs", "CLI.md"), []byte("# CLI\n"), 0o644)
}

type fakeTrigger struct {
	calls int
	err   error
}

func (f *fakeTrigger) Trigger(context.Context) error {
	f.calls++
	return f.err
}

func (f *fakeTrigger) Describe() string { return "gh workflow run release-py.yml" }

type fixture struct {
	root      string
	shell     *shell.Fake
	inspector *fakeInspector
	docs      *fakeDocs
	trigger   *fakeTrigger
	confirm   *prompt.Scripted
	out       *bytes.Buffer
	releaser  *Releaser
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	require.NoError(t, err)
	return string(data)
}

func newFixture(t *testing.T, answers ...bool) *fixture {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "Cargo.toml", workspaceManifest)
	writeFile(t, root, "Cargo.lock", "# lock\n")
	writeFile(t, root, "sideko/Cargo.toml", "[package]\nname = \"sideko\"\nversion = \"1.0.0\"\n")
	writeFile(t, root, "sideko-py/Cargo.toml", "[package]\nname = \"sideko-py\"\nversion = \"1.0.0\"\n")
	require.NoError(t, os.Mkdir(filepath.Join(root, "docs"), 0o755))

	f := &fixture{
		root:      root,
		shell:     &shell.Fake{Outputs: map[string]string{}},
		inspector: &fakeInspector{},
		docs:      &fakeDocs{root: root},
		trigger:   &fakeTrigger{},
		confirm:   &prompt.Scripted{Answers: answers},
		out:       &bytes.Buffer{},
	}
	f.releaser = New(config.DefaultConfig(), root, Deps{
		VCS:       git.NewClient(f.shell, root),
		Inspector: f.inspector,
		Docs:      f.docs,
		Trigger:   f.trigger,
		Confirmer: f.confirm,
		Printer:   output.NewPrinter(f.out, false, false),
	})
	return f
}

func TestRun_FullRelease(t *testing.T) {
	f := newFixture(t, true, true, true, true, true)
	f.shell.Outputs[`git diff -- Cargo.toml`] = "-    \"sideko-py\",\n"

	require.NoError(t, f.releaser.Run(context.Background(), "1.1.0"))

	assert.Equal(t, []string{
		"git diff -- sideko/Cargo.toml sideko-py/Cargo.toml Cargo.toml docs/CLI.md",
		"git add -- sideko/Cargo.toml sideko-py/Cargo.toml Cargo.toml docs/CLI.md Cargo.lock",
		`git commit -m "chore: prepare release 1.1.0"`,
		"git push",
		"git tag v1.1.0",
		"git push origin v1.1.0",
		"git diff -- Cargo.toml",
		"git add -- Cargo.toml Cargo.lock",
		`git commit -m "chore: restore sideko-py for pip release"`,
		"git push",
		"git diff -- Cargo.toml",
		"git add -- Cargo.toml Cargo.lock",
		`git commit -m "chore: remove sideko-py from workspace for dist release"`,
		"git push",
	}, f.shell.Commands())

	assert.Equal(t, []string{
		"Do the changes look correct?",
		"Run and push tag? git tag v1.1.0 && git push origin v1.1.0",
		"Does this look correct?",
		"Trigger GitHub workflow?",
		"Does this look correct?",
	}, f.confirm.Questions)

	assert.Equal(t, 1, f.docs.calls)
	assert.Equal(t, 1, f.trigger.calls)
	assert.Contains(t, readFile(t, f.root, "sideko/Cargo.toml"), `version = "1.1.0"`)
	assert.Contains(t, readFile(t, f.root, "sideko-py/Cargo.toml"), `version = "1.1.0"`)
	assert.Equal(t, excludedManifest, readFile(t, f.root, "Cargo.toml"))

	out := f.out.String()
	assert.Contains(t, out, "Bumping version from 1.0.0 to 1.1.0")
	assert.Contains(t, out, "Step 1: Bump version to 1.1.0")
	assert.Contains(t, out, "=== Changes to be committed ===")
	assert.Contains(t, out, "No changes detected in files")
	assert.Contains(t, out, "Release process completed.")
}

func TestRun_CommitsPassThroughGit(t *testing.T) {
	f := newFixture(t, true, false, true, false, true)
	require.NoError(t, f.releaser.Run(context.Background(), "2.0.0"))

	for _, call := range f.shell.Calls {
		assert.Equal(t, "git", call.Name)
		assert.Equal(t, f.root, call.Dir)
	}
}

func TestRun_NoVersion(t *testing.T) {
	f := newFixture(t)

	err := f.releaser.Run(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, output.ExitUserError, output.GetExitCode(err))
	assert.Contains(t, err.Error(), "current is 1.0.0")
	assert.Empty(t, f.shell.Calls)
}

func TestRun_DeclineFirstReviewRestoresEverything(t *testing.T) {
	f := newFixture(t, false)

	err := f.releaser.Run(context.Background(), "1.1.0")
	require.Error(t, err)
	assert.Equal(t, output.ExitAborted, output.GetExitCode(err))

	assert.Equal(t, []string{
		"git diff -- sideko/Cargo.toml sideko-py/Cargo.toml Cargo.toml docs/CLI.md",
		"git restore -- sideko/Cargo.toml sideko-py/Cargo.toml Cargo.toml docs/CLI.md",
	}, f.shell.Commands())
	assert.Contains(t, f.out.String(), "Aborting on user request")
	assert.Zero(t, f.trigger.calls)
}

func TestRun_DeclineDeletesCreatedDocs(t *testing.T) {
	f := newFixture(t, false)
	f.inspector.untracked = map[string]bool{"docs/CLI.md": true}

	err := f.releaser.Run(context.Background(), "1.1.0")
	require.Error(t, err)
	assert.Equal(t, output.ExitAborted, output.GetExitCode(err))

	assert.Equal(t, []string{
		"git diff -- sideko/Cargo.toml sideko-py/Cargo.toml Cargo.toml docs/CLI.md",
		"git restore -- sideko/Cargo.toml sideko-py/Cargo.toml Cargo.toml",
	}, f.shell.Commands())
	assert.Equal(t, 1, f.docs.calls)
	assert.NoFileExists(t, filepath.Join(f.root, "docs", "CLI.md"))
}

func TestRun_UntrackedOutputOnDiskRejected(t *testing.T) {
	f := newFixture(t, true)
	f.inspector.untracked = map[string]bool{"docs/CLI.md": true}
	writeFile(t, f.root, "docs/CLI.md", "# hand written\n")

	err := f.releaser.Run(context.Background(), "1.1.0")
	require.Error(t, err)
	assert.Equal(t, output.ExitUserError, output.GetExitCode(err))
	assert.Contains(t, err.Error(), "untracked files would be overwritten: docs/CLI.md")
	assert.Equal(t, "# hand written\n", readFile(t, f.root, "docs/CLI.md"))
	assert.Zero(t, f.docs.calls)
}

func TestRun_DeclineTagContinues(t *testing.T) {
	f := newFixture(t, true, false, true, true, true)

	require.NoError(t, f.releaser.Run(context.Background(), "1.1.0"))

	assert.NotContains(t, f.shell.Commands(), "git tag v1.1.0")
	assert.NotContains(t, f.shell.Commands(), "git push origin v1.1.0")
	assert.Contains(t, f.out.String(), "Skipping tag v1.1.0")
	assert.Equal(t, 1, f.trigger.calls)
}

func TestRun_DeclineRestoreGate(t *testing.T) {
	f := newFixture(t, true, true, false)

	err := f.releaser.Run(context.Background(), "1.1.0")
	require.Error(t, err)
	assert.Equal(t, output.ExitAborted, output.GetExitCode(err))

	cmds := f.shell.Commands()
	assert.Equal(t, "git restore -- Cargo.toml", cmds[len(cmds)-1])
	assert.Zero(t, f.trigger.calls)
}

func TestRun_DeclineTriggerContinues(t *testing.T) {
	f := newFixture(t, true, true, true, false, true)

	require.NoError(t, f.releaser.Run(context.Background(), "1.1.0"))
	assert.Zero(t, f.trigger.calls)
	assert.Contains(t, f.out.String(), "Skipping workflow trigger")
}

func TestRun_DeclineFinalGate(t *testing.T) {
	f := newFixture(t, true, true, true, true, false)

	err := f.releaser.Run(context.Background(), "1.1.0")
	assert.Equal(t, output.ExitAborted, output.GetExitCode(err))

	cmds := f.shell.Commands()
	assert.Equal(t, "git restore -- Cargo.toml", cmds[len(cmds)-1])
	assert.Equal(t, 1, f.trigger.calls)
}

func TestRun_TagConflict(t *testing.T) {
	f := newFixture(t)
	f.inspector.tags = map[string]bool{"v1.1.0": true}

	err := f.releaser.Run(context.Background(), "1.1.0")
	require.Error(t, err)
	assert.Equal(t, output.ExitConflict, output.GetExitCode(err))
	assert.Contains(t, readFile(t, f.root, "sideko/Cargo.toml"), `version = "1.0.0"`)
	assert.Empty(t, f.shell.Calls)
}

func TestRun_MissingVersionFileWritesNothing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.root, "sideko-py", "Cargo.toml")))

	err := f.releaser.Run(context.Background(), "1.1.0")
	require.Error(t, err)
	assert.Equal(t, output.ExitUserError, output.GetExitCode(err))
	assert.Contains(t, err.Error(), "not found")
	assert.Contains(t, readFile(t, f.root, "sideko/Cargo.toml"), `version = "1.0.0"`)
	assert.Equal(t, workspaceManifest, readFile(t, f.root, "Cargo.toml"))
}

func TestRun_UnmatchedVersionPattern(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.root, "sideko-py/Cargo.toml", "[package]\nname = \"sideko-py\"\n")

	err := f.releaser.Run(context.Background(), "1.1.0")
	require.Error(t, err)
	assert.Equal(t, output.ExitUserError, output.GetExitCode(err))
	assert.Contains(t, err.Error(), "could not find version")
}

func TestRun_MissingWorkspaceMembers(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.root, "Cargo.toml", "[package]\nname = \"x\"\n")

	err := f.releaser.Run(context.Background(), "1.1.0")
	assert.Equal(t, output.ExitUserError, output.GetExitCode(err))
	assert.Empty(t, f.shell.Calls)
}

func TestRun_DirtyTrackedFile(t *testing.T) {
	f := newFixture(t)
	f.inspector.modified = []string{"Cargo.toml", "README.md"}

	err := f.releaser.Run(context.Background(), "1.1.0")
	require.Error(t, err)
	assert.Equal(t, output.ExitUserError, output.GetExitCode(err))
	assert.Contains(t, err.Error(), "uncommitted changes in Cargo.toml")
}

func TestRun_PushFailureStops(t *testing.T) {
	f := newFixture(t, true, true, true, true, true)
	f.shell.Errors = map[string]error{"git push": output.NewSystemError("error executing command: git push: rejected")}

	err := f.releaser.Run(context.Background(), "1.1.0")
	require.Error(t, err)
	assert.Equal(t, output.ExitSystemError, output.GetExitCode(err))

	cmds := f.shell.Commands()
	assert.Equal(t, "git push", cmds[len(cmds)-1])
	assert.Len(t, f.confirm.Questions, 1)
}

func TestRun_DocsFailureStops(t *testing.T) {
	f := newFixture(t, true)
	f.docs.err = output.NewSystemError("error executing command: cargo run: boom")

	err := f.releaser.Run(context.Background(), "1.1.0")
	assert.Equal(t, output.ExitSystemError, output.GetExitCode(err))
	assert.Empty(t, f.confirm.Questions)
}

func TestRun_DocsCheckFailsBeforeWriting(t *testing.T) {
	f := newFixture(t, true)
	f.docs.checkErr = output.NewUserError("docs not found")

	err := f.releaser.Run(context.Background(), "1.1.0")
	require.Error(t, err)
	assert.Equal(t, output.ExitUserError, output.GetExitCode(err))
	assert.Zero(t, f.docs.calls)
	assert.Empty(t, f.shell.Calls)
	assert.Contains(t, readFile(t, f.root, "sideko/Cargo.toml"), `version = "1.0.0"`)
	assert.Equal(t, workspaceManifest, readFile(t, f.root, "Cargo.toml"))
}

func TestRun_DocsConfiguredWithoutGenerator(t *testing.T) {
	f := newFixture(t, true)
	f.releaser.deps.Docs = nil

	err := f.releaser.Run(context.Background(), "1.1.0")
	require.Error(t, err)
	assert.Equal(t, output.ExitUserError, output.GetExitCode(err))
	assert.Equal(t, workspaceManifest, readFile(t, f.root, "Cargo.toml"))
}

func TestRun_StepsFollowPlanWithoutDocs(t *testing.T) {
	f := newFixture(t, true, false, true, false, true)
	f.releaser.cfg.Docs.Command = nil

	require.NoError(t, f.releaser.Run(context.Background(), "1.1.0"))
	assert.Zero(t, f.docs.calls)

	out := f.out.String()
	assert.Contains(t, out, "Step 3: Review changes")
	assert.Contains(t, out, "Step 10: Push final changes")
	assert.NotContains(t, out, "Regenerate")
	assert.Contains(t, f.shell.Commands(), "git diff -- sideko/Cargo.toml sideko-py/Cargo.toml Cargo.toml")
}

func TestRun_TriggerFailure(t *testing.T) {
	f := newFixture(t, true, true, true, true)
	f.trigger.err = output.NewSystemError("gh not found: ensure it is installed and in PATH")

	err := f.releaser.Run(context.Background(), "1.1.0")
	assert.Equal(t, output.ExitSystemError, output.GetExitCode(err))
}

func TestRun_InspectorError(t *testing.T) {
	f := newFixture(t)
	f.inspector.err = errors.New("corrupt refs")

	assert.Error(t, f.releaser.Run(context.Background(), "1.1.0"))
	assert.Empty(t, f.shell.Calls)
}

func TestRun_NoLockfile(t *testing.T) {
	f := newFixture(t, true, false, true, false, true)
	require.NoError(t, os.Remove(filepath.Join(f.root, "Cargo.lock")))

	require.NoError(t, f.releaser.Run(context.Background(), "1.1.0"))
	assert.Contains(t, f.shell.Commands(), "git add -- Cargo.toml")
}

func TestPlan_Default(t *testing.T) {
	steps, err := Plan(config.DefaultConfig(), "1.1.0")
	require.NoError(t, err)
	require.Len(t, steps, 11)

	for i, step := range steps {
		assert.Equal(t, i+1, step.Number)
	}
	assert.Equal(t, "Bump version to 1.1.0 in sideko/Cargo.toml, sideko-py/Cargo.toml", steps[0].Title)
	assert.Equal(t, "cd docs && cargo run", steps[2].Command)
	assert.Equal(t, GateAbort, steps[3].Gate)
	assert.Equal(t, `git commit -m "chore: prepare release 1.1.0" && git push`, steps[4].Command)
	assert.Equal(t, GateSkip, steps[5].Gate)
	assert.Equal(t, "git tag v1.1.0 && git push origin v1.1.0", steps[5].Command)
	assert.Equal(t, "gh workflow run release-py.yml", steps[8].Command)
	assert.Equal(t, GateAbort, steps[9].Gate)
}

func TestPlan_WithoutDocs(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Docs.Command = nil
	cfg.Workflow.Mode = config.TriggerAPI

	steps, err := Plan(cfg, "1.1.0")
	require.NoError(t, err)
	require.Len(t, steps, 10)
	assert.Equal(t, "Review changes", steps[2].Title)
	assert.Equal(t, "POST workflow_dispatch release-py.yml", steps[7].Command)
}

func TestPlan_BadTemplate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Commits.Include = "{{.Missing}}"

	_, err := Plan(cfg, "1.1.0")
	assert.Error(t, err)
}

func TestRun_LogsTriggerDescription(t *testing.T) {
	f := newFixture(t, true, false, true, true, true)
	core, logs := observer.New(zapcore.DebugLevel)
	f.releaser.deps.Logger = zap.New(core)

	require.NoError(t, f.releaser.Run(context.Background(), "1.1.0"))

	entries := logs.FilterMessage("triggering workflow").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "gh workflow run release-py.yml", entries[0].ContextMap()["workflow"])
}

func TestRun_LogsCarryRunID(t *testing.T) {
	f := newFixture(t, true, false, true, false, true)
	core, logs := observer.New(zapcore.DebugLevel)
	f.releaser.deps.Logger = zap.New(core)

	require.NoError(t, f.releaser.Run(context.Background(), "1.1.0"))

	committed := logs.FilterMessage("committed").All()
	require.Len(t, committed, 3)
	assert.Empty(t, logs.FilterMessage("triggering workflow").All())
	run := committed[0].ContextMap()["run"]
	assert.NotEmpty(t, run)
	for _, entry := range committed {
		assert.Equal(t, run, entry.ContextMap()["run"])
		assert.Equal(t, "1.1.0", entry.ContextMap()["version"])
	}
}

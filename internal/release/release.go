package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gorewood/shipwright/internal/config"
	"github.com/gorewood/shipwright/internal/manifest"
	"github.com/gorewood/shipwright/internal/output"
	"github.com/gorewood/shipwright/internal/prompt"
	"github.com/gorewood/shipwright/internal/workspace"
)

// VCS is the version-control surface a run mutates. Paths are relative to
// the repository root.
type VCS interface {
	Diff(ctx context.Context, paths ...string) (string, error)
	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context) error
	Tag(ctx context.Context, name string) error
	PushTag(ctx context.Context, remote, name string) error
	Restore(ctx context.Context, paths ...string) error
}

// Inspector answers read-only repository questions during preflight.
type Inspector interface {
	TagExists(name string) (bool, error)
	ModifiedFiles() ([]string, error)
	Tracked(path string) (bool, error)
}

// Docs regenerates the documentation artifact.
type Docs interface {
	Check() error
	Generate(ctx context.Context) (string, error)
}

// Trigger starts the packaging workflow.
type Trigger interface {
	Trigger(ctx context.Context) error
	Describe() string
}

// Deps are the collaborators of a [Releaser].
type Deps struct {
	VCS       VCS
	Inspector Inspector
	Docs      Docs
	Trigger   Trigger
	Confirmer prompt.Confirmer
	Printer   *output.Printer
	Logger    *zap.Logger
}

// Releaser runs the release sequence in one repository.
type Releaser struct {
	cfg  *config.Config
	root string
	deps Deps

	modified []string
	// created holds touched paths absent from the index and the disk at
	// preflight. A decline deletes them instead of restoring them.
	created map[string]bool
	steps   []Step
	cursor  int
}

// New creates a Releaser for the repository at root.
func New(cfg *config.Config, root string, deps Deps) *Releaser {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Releaser{cfg: cfg, root: root, deps: deps}
}

// CurrentVersion reads the version from the primary version file.
func (r *Releaser) CurrentVersion() (string, error) {
	return manifest.ReadVersion(r.path(r.cfg.PrimaryVersionFile()))
}

// Modified returns the files touched so far, relative to the root.
func (r *Releaser) Modified() []string {
	return slices.Clone(r.modified)
}

// Run releases version. An empty version fails with a usage error naming the
// current version.
func (r *Releaser) Run(ctx context.Context, version string) error {
	current, err := r.CurrentVersion()
	if err != nil {
		return err
	}
	if version == "" {
		return output.NewUserError("must specify version (current is " + current + ")")
	}

	msgs, err := messages(r.cfg, version)
	if err != nil {
		return output.NewUserErrorWithCause("invalid commit message template", err)
	}
	if r.steps, err = Plan(r.cfg, version); err != nil {
		return output.NewUserErrorWithCause("invalid release plan", err)
	}
	r.cursor = 0
	r.modified = nil
	log := r.deps.Logger
	r.deps.Logger = log.With(zap.String("run", uuid.NewString()), zap.String("version", version))
	defer func() { r.deps.Logger = log }()

	if err := r.Preflight(version); err != nil {
		return err
	}

	r.deps.Printer.Print("\nBumping version from %s to %s\n", current, version)

	if err := r.prepare(ctx, version); err != nil {
		return err
	}
	if err := r.publish(ctx, version, msgs.prepare); err != nil {
		return err
	}
	if err := r.packageRelease(ctx, msgs.include); err != nil {
		return err
	}
	if err := r.finish(ctx, msgs.exclude); err != nil {
		return err
	}

	r.deps.Printer.Println("\nRelease process completed.")
	return nil
}

// Preflight checks that every file the run writes exists and parses, that
// the docs generator can run, that none of the touched files carries changes
// a revert would discard, and that the release tag is free. Nothing is
// written.
func (r *Releaser) Preflight(version string) error {
	r.created = nil
	for _, file := range r.cfg.VersionFiles {
		if _, err := manifest.ReadVersion(r.path(file)); err != nil {
			return err
		}
	}
	if _, err := workspace.Has(r.path(r.cfg.Workspace.File), r.cfg.Workspace.Member); err != nil {
		return err
	}
	if r.cfg.Docs.Enabled() {
		if r.deps.Docs == nil {
			return output.NewUserError("docs.command is set but no documentation generator is available")
		}
		if err := r.deps.Docs.Check(); err != nil {
			return err
		}
	}

	if r.deps.Inspector == nil {
		return nil
	}

	touched := append(slices.Clone(r.cfg.VersionFiles), r.cfg.Workspace.File)
	if r.cfg.Docs.Enabled() && r.cfg.Docs.Output != "" {
		touched = append(touched, r.cfg.Docs.Output)
	}
	if err := r.checkClean(touched); err != nil {
		return err
	}

	tag := r.cfg.TagName(version)
	exists, err := r.deps.Inspector.TagExists(tag)
	if err != nil {
		return err
	}
	if exists {
		return output.NewConflictError("tag " + tag + " already exists")
	}
	return nil
}

// checkClean rejects touched files with uncommitted changes and untracked
// files already on disk, and records the untracked ones the run will create.
func (r *Releaser) checkClean(touched []string) error {
	dirty, err := r.deps.Inspector.ModifiedFiles()
	if err != nil {
		return err
	}

	var conflicts, untracked []string
	created := map[string]bool{}
	for _, file := range touched {
		rel := filepath.ToSlash(file)
		if slices.Contains(dirty, rel) {
			conflicts = append(conflicts, file)
			continue
		}
		tracked, err := r.deps.Inspector.Tracked(rel)
		if err != nil {
			return err
		}
		if tracked {
			continue
		}
		if manifest.Exists(r.path(file)) {
			untracked = append(untracked, file)
			continue
		}
		created[file] = true
	}

	if len(conflicts) > 0 {
		return output.NewUserError("uncommitted changes in " + strings.Join(conflicts, ", ") +
			": commit or stash them before releasing")
	}
	if len(untracked) > 0 {
		return output.NewUserError("untracked files would be overwritten: " + strings.Join(untracked, ", ") +
			": commit or remove them before releasing")
	}
	r.created = created
	return nil
}

// prepare rewrites the version files, excludes the member, regenerates the
// docs, and asks for approval of the combined diff.
func (r *Releaser) prepare(ctx context.Context, version string) error {
	r.begin()
	for _, file := range r.cfg.VersionFiles {
		if err := manifest.UpdateVersion(r.path(file), version); err != nil {
			return err
		}
		r.deps.Logger.Debug("updated version", zap.String("file", file), zap.String("version", version))
		r.track(file)
	}

	r.begin()
	if err := r.toggle(false); err != nil {
		return err
	}

	if r.cfg.Docs.Enabled() {
		r.begin()
		out, err := r.deps.Docs.Generate(ctx)
		if err != nil {
			return err
		}
		r.track(out)
	}

	r.begin()
	return r.review(ctx, "Do the changes look correct?", r.modified...)
}

// publish commits the distribution release and optionally tags it.
func (r *Releaser) publish(ctx context.Context, version, message string) error {
	lock := r.lockfile()
	if lock != "" {
		r.track(lock)
	}
	r.deps.Printer.Print("\nStarting release process for version %s\n", version)

	r.begin()
	if err := r.commit(ctx, message, r.modified...); err != nil {
		return err
	}

	r.begin()
	tag := r.cfg.TagName(version)
	remote := r.cfg.Git.Remote
	ok, err := r.deps.Confirmer.Confirm(fmt.Sprintf("Run and push tag? git tag %s && git push %s %s", tag, remote, tag))
	if err != nil {
		return output.NewSystemErrorWithCause("failed to read confirmation", err)
	}
	if !ok {
		r.deps.Printer.Println("Skipping tag " + tag)
		return nil
	}
	if err := r.deps.VCS.Tag(ctx, tag); err != nil {
		return err
	}
	return r.deps.VCS.PushTag(ctx, remote, tag)
}

// packageRelease restores the member, commits, and optionally triggers the
// packaging workflow.
func (r *Releaser) packageRelease(ctx context.Context, message string) error {
	r.begin()
	if err := r.toggle(true); err != nil {
		return err
	}
	if err := r.review(ctx, "Does this look correct?", r.cfg.Workspace.File); err != nil {
		return err
	}

	r.begin()
	if err := r.commit(ctx, message, r.workspaceFiles()...); err != nil {
		return err
	}

	r.begin()
	ok, err := r.deps.Confirmer.Confirm("Trigger GitHub workflow?")
	if err != nil {
		return output.NewSystemErrorWithCause("failed to read confirmation", err)
	}
	if !ok {
		r.deps.Printer.Println("Skipping workflow trigger")
		return nil
	}
	if r.deps.Trigger == nil {
		return output.NewUserError("no workflow trigger configured")
	}
	r.deps.Logger.Debug("triggering workflow", zap.String("workflow", r.deps.Trigger.Describe()))
	return r.deps.Trigger.Trigger(ctx)
}

// finish removes the member again and commits.
func (r *Releaser) finish(ctx context.Context, message string) error {
	r.begin()
	if err := r.toggle(false); err != nil {
		return err
	}
	if err := r.review(ctx, "Does this look correct?", r.cfg.Workspace.File); err != nil {
		return err
	}

	r.begin()
	return r.commit(ctx, message, r.workspaceFiles()...)
}

// review shows the diff of paths and asks question. A decline reverts paths
// and returns an aborted error.
func (r *Releaser) review(ctx context.Context, question string, paths ...string) error {
	diff, err := r.deps.VCS.Diff(ctx, paths...)
	if err != nil {
		return err
	}
	r.deps.Printer.Diff(diff)

	ok, err := r.deps.Confirmer.Confirm(question)
	if err != nil {
		return output.NewSystemErrorWithCause("failed to read confirmation", err)
	}
	if ok {
		return nil
	}

	r.deps.Printer.Println("Aborting on user request")
	if err := r.revert(ctx, paths); err != nil {
		return err
	}
	return output.NewAbortedError("release aborted on user request")
}

// revert restores tracked paths from the index and deletes the ones the run
// created.
func (r *Releaser) revert(ctx context.Context, paths []string) error {
	var restore []string
	for _, p := range paths {
		if !r.created[p] {
			restore = append(restore, p)
			continue
		}
		if err := os.Remove(r.path(p)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return output.NewSystemErrorWithCause("failed to remove "+p, err)
		}
		r.deps.Logger.Debug("removed generated file", zap.String("file", p))
	}
	if len(restore) == 0 {
		return nil
	}
	return r.deps.VCS.Restore(ctx, restore...)
}

func (r *Releaser) commit(ctx context.Context, message string, paths ...string) error {
	if err := r.deps.VCS.Add(ctx, paths...); err != nil {
		return err
	}
	if err := r.deps.VCS.Commit(ctx, message); err != nil {
		return err
	}
	for _, p := range paths {
		delete(r.created, p)
	}
	r.deps.Logger.Debug("committed", zap.String("message", message), zap.Strings("paths", paths))
	return r.deps.VCS.Push(ctx)
}

func (r *Releaser) toggle(present bool) error {
	ws := r.cfg.Workspace.File
	member := r.cfg.Workspace.Member

	var changed bool
	var err error
	if present {
		changed, err = workspace.Include(r.path(ws), member)
	} else {
		changed, err = workspace.Exclude(r.path(ws), member)
	}
	if err != nil {
		return err
	}
	r.deps.Logger.Debug("toggled workspace member",
		zap.String("member", member), zap.Bool("present", present), zap.Bool("changed", changed))
	r.track(ws)
	return nil
}

// workspaceFiles returns the paths staged by the member toggle commits.
func (r *Releaser) workspaceFiles() []string {
	files := []string{r.cfg.Workspace.File}
	if lock := r.lockfile(); lock != "" {
		files = append(files, lock)
	}
	return files
}

// lockfile returns the configured lockfile when it exists on disk.
func (r *Releaser) lockfile() string {
	lock := r.cfg.Lockfile
	if lock == "" || !manifest.Exists(r.path(lock)) {
		return ""
	}
	return lock
}

// begin announces the next planned step.
func (r *Releaser) begin() {
	if r.cursor >= len(r.steps) {
		return
	}
	step := r.steps[r.cursor]
	r.cursor++
	r.deps.Printer.Step(step.Number, step.Title)
}

func (r *Releaser) track(path string) {
	if !slices.Contains(r.modified, path) {
		r.modified = append(r.modified, path)
	}
}

func (r *Releaser) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(r.root, rel)
}

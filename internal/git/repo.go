package git

import (
	"errors"
	"regexp"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/index"

	"github.com/gorewood/shipwright/internal/output"
)

var (
	sshRemotePattern   = regexp.MustCompile(`^[\w.-]+@[\w.-]+:([^/]+)/(.+?)(?:\.git)?/?$`)
	httpsRemotePattern = regexp.MustCompile(`^(?:https?|ssh|git)://(?:[^@/]+@)?[^/]+/([^/]+)/(.+?)(?:\.git)?/?$`)
)

// Repo is a read-only view of a repository, backed by go-git so inspection
// does not spawn processes.
type Repo struct {
	repo *gogit.Repository
}

// Open opens the repository containing dir, searching parent directories.
func Open(dir string) (*Repo, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, output.NewUserErrorWithCause("not in a git repository", err)
	}
	return &Repo{repo: repo}, nil
}

// Root returns the working tree root.
func (r *Repo) Root() (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", output.NewSystemErrorWithCause("failed to open worktree", err)
	}
	return wt.Filesystem.Root(), nil
}

// CurrentBranch returns the short branch name, or "" when HEAD is detached.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", output.NewSystemErrorWithCause("failed to get HEAD", err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// HEAD returns the full SHA of HEAD.
func (r *Repo) HEAD() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", output.NewSystemErrorWithCause("failed to get HEAD", err)
	}
	return head.Hash().String(), nil
}

// TagExists reports whether a tag named name exists locally.
func (r *Repo) TagExists(name string) (bool, error) {
	_, err := r.repo.Tag(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gogit.ErrTagNotFound):
		return false, nil
	default:
		return false, output.NewSystemErrorWithCause("failed to look up tag "+name, err)
	}
}

// ModifiedFiles returns the worktree-relative paths with staged or unstaged
// changes, untracked files excluded.
func (r *Repo) ModifiedFiles() ([]string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to open worktree", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to read worktree status", err)
	}

	var files []string
	for path, st := range status {
		if st.Worktree == gogit.Untracked {
			continue
		}
		if st.Worktree != gogit.Unmodified || st.Staging != gogit.Unmodified {
			files = append(files, path)
		}
	}
	return files, nil
}

// Tracked reports whether path, relative to the worktree root, is in the
// index.
func (r *Repo) Tracked(path string) (bool, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return false, output.NewSystemErrorWithCause("failed to read index", err)
	}
	_, err = idx.Entry(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, index.ErrEntryNotFound):
		return false, nil
	default:
		return false, output.NewSystemErrorWithCause("failed to look up "+path+" in index", err)
	}
}

// RemoteRepository returns the owner and name of the GitHub-style repository
// behind remote, parsed from its first URL.
func (r *Repo) RemoteRepository(remote string) (owner, name string, err error) {
	rem, err := r.repo.Remote(remote)
	if err != nil {
		return "", "", output.NewUserErrorWithCause("remote "+remote+" not configured", err)
	}
	urls := rem.Config().URLs
	if len(urls) == 0 {
		return "", "", output.NewUserError("remote " + remote + " has no URL")
	}
	owner, name, ok := ParseRepository(urls[0])
	if !ok {
		return "", "", output.NewUserError("cannot derive owner/repo from remote URL " + urls[0])
	}
	return owner, name, nil
}

// ParseRepository extracts owner and repository name from an SSH
// (git@host:owner/repo.git) or URL-style (https://host/owner/repo.git) remote.
func ParseRepository(url string) (owner, name string, ok bool) {
	url = strings.TrimSpace(url)
	for _, pattern := range []*regexp.Regexp{httpsRemotePattern, sshRemotePattern} {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1], m[2], true
		}
	}
	return "", "", false
}

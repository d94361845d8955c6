// Package git provides the version-control operations of a release run.
//
// Mutating operations (diff, add, commit, push, tag, restore) shell out to the
// git executable through [Client], so hooks, credentials, and signing behave
// exactly as they do for the operator:
//
//	client := git.NewClient(shell.NewExec(logger), ".")
//	diff, err := client.Diff(ctx, "Cargo.toml")
//	err = client.Restore(ctx, "Cargo.toml")
//
// Read-only inspection (branch, HEAD, tag existence, remote owner/repo) goes
// through [Repo], which reads the repository with go-git:
//
//	repo, err := git.Open(".")
//	exists, err := repo.TagExists("v1.2.3")
//
// All errors carry exit codes from the output package: failed git commands
// are ExitSystemError, a directory outside any repository is ExitUserError.
package git

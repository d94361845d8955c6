package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gorewood/shipwright/internal/output"
	"github.com/gorewood/shipwright/internal/prompt"
	"github.com/gorewood/shipwright/internal/release"
)

// newReleaseCmd creates the release command.
func newReleaseCmd() *cobra.Command {
	var versionFlag string
	var dryRunFlag bool

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Run the interactive release sequence",
		Long: `Run the release sequence for a new version.

The version is written to every configured manifest, the bindings member is
removed from the workspace, and the docs are regenerated. After you approve
the diff, shipwright commits and pushes, offers to tag, restores the member
for the packaging build, offers to trigger the packaging workflow, and removes
the member again. Each commit is preceded by a diff and a confirmation.

Exit codes:
  0  release completed
  1  missing file, unmatched version pattern, or bad arguments
  2  an external command failed
  3  the release tag already exists
  4  a confirmation was declined and the changes were reverted

Examples:
  shipwright release --version 1.4.0
  shipwright release --version 1.4.0 --dry-run
  shipwright release --version 1.4.0 --dry-run --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRelease(cmd, versionFlag, dryRunFlag)
		},
	}
	cmd.Flags().StringVar(&versionFlag, "version", "", "Version to release (required)")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Show the release plan without changing anything")
	return cmd
}

func runRelease(cmd *cobra.Command, version string, dryRun bool) error {
	printer := newPrinter(cmd)

	if printer.IsJSON() && !dryRun {
		err := output.NewUserError("release is interactive; --json is only supported with --dry-run")
		printer.Error(err)
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		printer.Error(err)
		return err
	}

	if dryRun {
		return printPlan(printer, a, version)
	}

	trig, err := a.newTrigger(cmd.Context())
	if err != nil {
		printer.Error(err)
		return err
	}

	releaser := release.New(a.cfg, a.root, release.Deps{
		VCS:       a.gitClient(),
		Inspector: a.repo,
		Docs:      a.docsGenerator(),
		Trigger:   trig,
		Confirmer: prompt.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout()),
		Printer:   printer,
		Logger:    a.logger,
	})
	if err := releaser.Run(cmd.Context(), version); err != nil {
		printer.Error(err)
		return err
	}
	return nil
}

// printPlan renders the release plan and the preflight verdict.
func printPlan(printer *output.Printer, a *app, version string) error {
	releaser := release.New(a.cfg, a.root, release.Deps{
		Inspector: a.repo,
		Docs:      a.docsGenerator(),
		Printer:   printer,
		Logger:    a.logger,
	})

	current, err := releaser.CurrentVersion()
	if err != nil {
		printer.Error(err)
		return err
	}
	if version == "" {
		err := output.NewUserError("must specify version (current is " + current + ")")
		printer.Error(err)
		return err
	}

	steps, err := release.Plan(a.cfg, version)
	if err != nil {
		err = output.NewUserErrorWithCause("invalid release plan", err)
		printer.Error(err)
		return err
	}
	preflight := releaser.Preflight(version)

	if printer.IsJSON() {
		data := map[string]any{
			"current": current,
			"version": version,
			"tag":     a.cfg.TagName(version),
			"steps":   steps,
			"ready":   preflight == nil,
		}
		if preflight != nil {
			data["preflight_error"] = preflight.Error()
		}
		return printer.Success(data)
	}

	printer.Print("Release plan: %s -> %s\n", current, version)
	rows := make([][]string, 0, len(steps))
	for _, step := range steps {
		rows = append(rows, []string{strconv.Itoa(step.Number), step.Title, string(step.Gate), step.Command})
	}
	printer.Println()
	printer.Table([]string{"STEP", "ACTION", "ON DECLINE", "COMMAND"}, rows)

	if preflight != nil {
		printer.Println()
		printer.Error(preflight)
		return preflight
	}
	printer.Println()
	printer.Println("Preflight checks passed.")
	return nil
}

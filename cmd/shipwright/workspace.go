package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gorewood/shipwright/internal/workspace"
)

// newWorkspaceCmd creates the workspace command and its include/exclude subcommands.
func newWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Include or exclude the toggled workspace member",
		Long: `Include or exclude the configured workspace member without committing.

The members list is rewritten on one line when it holds at most two entries
and one entry per line otherwise. Running the same direction twice is a no-op.

Examples:
  shipwright workspace exclude
  shipwright workspace include --json`,
	}
	cmd.AddCommand(newWorkspaceToggleCmd("include", "Add the member to the workspace", true))
	cmd.AddCommand(newWorkspaceToggleCmd("exclude", "Remove the member from the workspace", false))
	return cmd
}

func newWorkspaceToggleCmd(use, short string, present bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkspaceToggle(cmd, present)
		},
	}
}

func runWorkspaceToggle(cmd *cobra.Command, present bool) error {
	printer := newPrinter(cmd)

	a, err := newApp(cmd)
	if err != nil {
		printer.Error(err)
		return err
	}

	ws := a.cfg.Workspace
	path := filepath.Join(a.root, ws.File)

	toggle := workspace.Exclude
	verb := "excluded from"
	if present {
		toggle = workspace.Include
		verb = "included in"
	}

	changed, err := toggle(path, ws.Member)
	if err != nil {
		printer.Error(err)
		return err
	}
	members, err := workspace.Members(path)
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"file":    ws.File,
			"member":  ws.Member,
			"present": present,
			"changed": changed,
			"members": members,
		})
	}

	if changed {
		printer.Print("%s %s %s\n", ws.Member, verb, ws.File)
	} else {
		printer.Print("%s already %s %s\n", ws.Member, verb, ws.File)
	}
	return nil
}

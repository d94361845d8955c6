package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gorewood/shipwright/internal/config"
	"github.com/gorewood/shipwright/internal/git"
)

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	var forceFlag bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to shipwright.yaml",
		Long: `Write the default configuration to shipwright.yaml at the repository root.

The file lists every setting with its default so it can be edited in place.
An existing file is left alone unless --force is given.

Examples:
  shipwright init
  shipwright init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, forceFlag)
		},
	}
	cmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing shipwright.yaml")
	return cmd
}

func runInit(cmd *cobra.Command, force bool) error {
	printer := newPrinter(cmd)

	repo, err := git.Open(".")
	if err != nil {
		printer.Error(err)
		return err
	}
	root, err := repo.Root()
	if err != nil {
		printer.Error(err)
		return err
	}

	path := filepath.Join(root, config.ProjectConfigFile)
	if err := config.WriteFile(path, config.DefaultConfig(), force); err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{"path": path, "status": "created"})
	}
	return printer.Success(map[string]any{"message": "Wrote " + path})
}

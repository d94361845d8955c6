package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gorewood/shipwright/internal/manifest"
	"github.com/gorewood/shipwright/internal/output"
)

// newBumpCmd creates the bump command.
func newBumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bump <version>",
		Short: "Write a version into every configured manifest",
		Long: `Write a version into every configured manifest without committing.

Only the first version assignment of each manifest is rewritten. Every
manifest is checked before any is written.

Examples:
  shipwright bump 1.4.0
  shipwright bump 1.4.0 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBump(cmd, args[0])
		},
	}
}

func runBump(cmd *cobra.Command, version string) error {
	printer := newPrinter(cmd)

	if strings.TrimSpace(version) == "" || strings.Contains(version, `"`) {
		err := output.NewUserError("invalid version: " + version)
		printer.Error(err)
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		printer.Error(err)
		return err
	}

	previous := make(map[string]string, len(a.cfg.VersionFiles))
	for _, file := range a.cfg.VersionFiles {
		v, err := manifest.ReadVersion(filepath.Join(a.root, file))
		if err != nil {
			printer.Error(err)
			return err
		}
		previous[file] = v
	}

	for _, file := range a.cfg.VersionFiles {
		if err := manifest.UpdateVersion(filepath.Join(a.root, file), version); err != nil {
			printer.Error(err)
			return err
		}
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"version":  version,
			"previous": previous,
			"files":    a.cfg.VersionFiles,
		})
	}
	for _, file := range a.cfg.VersionFiles {
		printer.Print("%s: %s -> %s\n", file, previous[file], version)
	}
	return nil
}

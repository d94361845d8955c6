// Package main provides the entry point for the shipwright CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gorewood/shipwright/internal/config"
	"github.com/gorewood/shipwright/internal/envfile"
	"github.com/gorewood/shipwright/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	return boolFlag(cmd, "json")
}

// useColor folds the --color flag into TTY detection on the command's output.
func useColor(cmd *cobra.Command) bool {
	mode := output.ColorAuto
	if value := lookupFlag(cmd, "color"); value != nil {
		mode = value.String()
	}
	return output.ResolveColorMode(mode, output.IsTTY(cmd.OutOrStdout()))
}

// newPrinter creates the printer for a command, honoring --json and --color.
func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).WithStderr(cmd.ErrOrStderr())
}

// newLogger returns a development logger on stderr with --verbose, else a no-op.
func newLogger(cmd *cobra.Command) *zap.Logger {
	if !boolFlag(cmd, "verbose") {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func boolFlag(cmd *cobra.Command, name string) bool {
	value := lookupFlag(cmd, name)
	return value != nil && value.String() == "true"
}

// lookupFlag finds a local or persistent flag and returns its value.
func lookupFlag(cmd *cobra.Command, name string) fmt.Stringer {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		// Walk up to root to find the persistent flag
		flag = cmd.Root().PersistentFlags().Lookup(name)
	}
	if flag == nil {
		return nil
	}
	return flag.Value
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the shipwright CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shipwright",
		Short: "Release automation for a Cargo workspace CLI",
		Long: `Shipwright - release automation for a CLI built from a Cargo workspace.

A release bumps the version in every package manifest, removes the Python
bindings crate from the workspace for the public-distribution release,
regenerates the CLI docs, and then walks commit/tag/push cycles with a
confirmation before each destructive step:

  1. commit and push the release, optionally tag it
  2. restore the bindings crate and trigger the packaging workflow
  3. remove the bindings crate again

Declining a diff reverts the touched files and exits with code 4.

Read-only commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isJSONMode(cmd) {
				printer := output.NewPrinter(cmd.OutOrStdout(), true, false)
				err := output.NewUserError("no command specified. Run 'shipwright --help' for usage")
				printer.Error(err)
				return err
			}
			return cmd.Help()
		},
	}

	// Load .env.local (then .env) for tokens that can't be exported to env.
	// Environment variables always take precedence over file values.
	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return envfile.LoadAll(envfile.Paths(".", config.Dir())...)
	}

	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("color", output.ColorAuto, "Color output: auto, always, never")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log external commands and file writes to stderr")

	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "release", Title: "Release Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "inspect", Title: "Inspection Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "admin", Title: "Admin Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command) {
	addGroupedCommand(cmd, newReleaseCmd(), "release")
	addGroupedCommand(cmd, newBumpCmd(), "release")
	addGroupedCommand(cmd, newWorkspaceCmd(), "release")

	addGroupedCommand(cmd, newStatusCmd(), "inspect")
	addGroupedCommand(cmd, newServeCmd(), "inspect")

	addGroupedCommand(cmd, newInitCmd(), "admin")
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}

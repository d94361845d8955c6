package main

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gorewood/shipwright/internal/manifest"
	"github.com/gorewood/shipwright/internal/output"
	"github.com/gorewood/shipwright/internal/workspace"
)

// statusResult holds the data for status output.
type statusResult struct {
	Repo          string            `json:"repo"`
	Branch        string            `json:"branch"`
	Head          string            `json:"head"`
	ConfigFile    string            `json:"config_file,omitempty"`
	Version       string            `json:"version"`
	Versions      map[string]string `json:"versions"`
	InSync        bool              `json:"in_sync"`
	Tag           string            `json:"tag"`
	Tagged        bool              `json:"tagged"`
	Member        string            `json:"member"`
	MemberPresent bool              `json:"member_present"`
	Members       []string          `json:"members"`
	Modified      []string          `json:"modified,omitempty"`
}

// newStatusCmd creates the status command.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show version, workspace, and repository state",
		Long: `Show the state a release would start from.

Displays the repository (branch, HEAD), the version of every configured
manifest, whether the current version is tagged, and whether the toggled
workspace member is currently included.

Examples:
  shipwright status         # Show human-readable status
  shipwright status --json  # Output status as JSON for scripting`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	printer := newPrinter(cmd)

	a, err := newApp(cmd)
	if err != nil {
		printer.Error(err)
		return err
	}

	result, err := gatherStatus(a)
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.WriteJSON(result)
	}
	printHumanStatus(printer, a, result)
	return nil
}

// gatherStatus collects all status information.
func gatherStatus(a *app) (*statusResult, error) {
	result := &statusResult{
		Repo:       filepath.Base(a.root),
		ConfigFile: a.configFile,
		Versions:   make(map[string]string, len(a.cfg.VersionFiles)),
		InSync:     true,
		Member:     a.cfg.Workspace.Member,
	}

	var err error
	if result.Branch, err = a.repo.CurrentBranch(); err != nil {
		return nil, err
	}
	if result.Head, err = a.repo.HEAD(); err != nil {
		return nil, err
	}

	for i, file := range a.cfg.VersionFiles {
		v, err := manifest.ReadVersion(filepath.Join(a.root, file))
		if err != nil {
			return nil, err
		}
		result.Versions[file] = v
		if i == 0 {
			result.Version = v
		} else if v != result.Version {
			result.InSync = false
		}
	}

	result.Tag = a.cfg.TagName(result.Version)
	if result.Tagged, err = a.repo.TagExists(result.Tag); err != nil {
		return nil, err
	}

	if result.Members, err = workspace.Members(filepath.Join(a.root, a.cfg.Workspace.File)); err != nil {
		return nil, err
	}
	result.MemberPresent = slices.Contains(result.Members, result.Member)

	if result.Modified, err = a.repo.ModifiedFiles(); err != nil {
		return nil, err
	}
	return result, nil
}

// printHumanStatus renders status in human-readable format.
func printHumanStatus(printer *output.Printer, a *app, result *statusResult) {
	printer.Section("Repository")
	printer.KeyValue("Repo", result.Repo)
	branch := result.Branch
	if branch == "" {
		branch = "(detached)"
	}
	printer.KeyValue("Branch", branch)
	printer.KeyValue("HEAD", shortSHA(result.Head))
	if result.ConfigFile != "" {
		printer.KeyValue("Config", result.ConfigFile)
	} else {
		printer.KeyValue("Config", "defaults")
	}

	printer.Section("Version")
	rows := make([][]string, 0, len(a.cfg.VersionFiles))
	for _, file := range a.cfg.VersionFiles {
		rows = append(rows, []string{file, result.Versions[file]})
	}
	printer.Table([]string{"MANIFEST", "VERSION"}, rows)
	if !result.InSync {
		printer.Warn("manifest versions differ")
	}
	tagState := "not tagged"
	if result.Tagged {
		tagState = "tagged"
	}
	printer.KeyValue("Tag", result.Tag+" ("+tagState+")")

	printer.Section("Workspace")
	printer.KeyValue("Members", strings.Join(result.Members, ", "))
	memberState := "excluded"
	if result.MemberPresent {
		memberState = "included"
	}
	printer.KeyValue(result.Member, memberState)

	if len(result.Modified) > 0 {
		printer.Section("Uncommitted")
		for _, file := range result.Modified {
			printer.Println("  " + file)
		}
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

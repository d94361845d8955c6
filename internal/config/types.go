// Package config provides configuration loading for shipwright.
//
// Configuration is loaded with Viper from YAML, with environment variable
// overrides. [DefaultConfig] describes the layout shipwright was built for (a
// Cargo workspace whose Python bindings crate is only a workspace member while
// the Python package is being built), so a repository with that layout needs
// no file at all.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (SHIPWRIGHT_ prefix, "." becomes "_", e.g.
//     SHIPWRIGHT_WORKSPACE_MEMBER)
//  2. File named by SHIPWRIGHT_CONFIG_PATH
//  3. ./shipwright.yaml
//  4. [UserConfigPath] (e.g. ~/.config/shipwright/config.yaml)
//  5. [DefaultConfig]
package config

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Workflow trigger modes.
const (
	TriggerGH  = "gh"
	TriggerAPI = "api"
)

// Commit message kinds, one per commit of a release run.
const (
	CommitPrepare = "prepare"
	CommitInclude = "include"
	CommitExclude = "exclude"
)

// Config is the root configuration.
type Config struct {
	// VersionFiles are the package manifests whose version is bumped, in
	// order. The first one is the source of the current version.
	VersionFiles []string `mapstructure:"version_files" yaml:"version_files"`

	// Workspace identifies the workspace manifest and the toggled member.
	Workspace WorkspaceConfig `mapstructure:"workspace" yaml:"workspace"`

	// Lockfile is staged with every commit after the first checkpoint.
	Lockfile string `mapstructure:"lockfile" yaml:"lockfile"`

	Docs     DocsConfig     `mapstructure:"docs" yaml:"docs"`
	Git      GitConfig      `mapstructure:"git" yaml:"git"`
	Commits  CommitConfig   `mapstructure:"commits" yaml:"commits"`
	Workflow WorkflowConfig `mapstructure:"workflow" yaml:"workflow"`
}

// WorkspaceConfig names the workspace manifest and the member that is
// removed for the public-distribution release and restored for the
// package-specific one.
type WorkspaceConfig struct {
	File   string `mapstructure:"file" yaml:"file"`
	Member string `mapstructure:"member" yaml:"member"`
}

// DocsConfig describes the documentation generator.
type DocsConfig struct {
	// Dir is the working directory of the generator.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Command is the generator argv. Empty skips regeneration.
	Command []string `mapstructure:"command" yaml:"command"`
	// Output is the generated file, relative to the repository root.
	Output string `mapstructure:"output" yaml:"output"`
}

// Enabled reports whether documentation is regenerated during a release.
func (d DocsConfig) Enabled() bool {
	return len(d.Command) > 0
}

// GitConfig holds remote and tag naming.
type GitConfig struct {
	Remote    string `mapstructure:"remote" yaml:"remote"`
	TagPrefix string `mapstructure:"tag_prefix" yaml:"tag_prefix"`
}

// CommitConfig holds commit message templates. Templates see {{.Version}}
// and {{.Member}}.
type CommitConfig struct {
	Prepare string `mapstructure:"prepare" yaml:"prepare"`
	Include string `mapstructure:"include" yaml:"include"`
	Exclude string `mapstructure:"exclude" yaml:"exclude"`
}

// WorkflowConfig describes the downstream packaging workflow.
type WorkflowConfig struct {
	// Mode is "gh" (GitHub CLI) or "api" (REST workflow_dispatch).
	Mode string `mapstructure:"mode" yaml:"mode"`
	// File is the workflow file name, e.g. release-py.yml.
	File string `mapstructure:"file" yaml:"file"`
	// Repository is owner/name for api mode; empty derives it from the remote.
	Repository string `mapstructure:"repository" yaml:"repository"`
	// TokenEnv names the environment variable holding the API token.
	TokenEnv string `mapstructure:"token_env" yaml:"token_env"`
}

// MessageData is the template data for commit messages.
type MessageData struct {
	Version string
	Member  string
}

// DefaultConfig returns the configuration for the default repository layout.
func DefaultConfig() *Config {
	return &Config{
		VersionFiles: []string{"sideko/Cargo.toml", "sideko-py/Cargo.toml"},
		Workspace: WorkspaceConfig{
			File:   "Cargo.toml",
			Member: "sideko-py",
		},
		Lockfile: "Cargo.lock",
		Docs: DocsConfig{
			Dir:     "docs",
			Command: []string{"cargo", "run"},
			Output:  "docs/CLI.md",
		},
		Git: GitConfig{
			Remote:    "origin",
			TagPrefix: "v",
		},
		Commits: CommitConfig{
			Prepare: "chore: prepare release {{.Version}}",
			Include: "chore: restore {{.Member}} for pip release",
			Exclude: "chore: remove {{.Member}} from workspace for dist release",
		},
		Workflow: WorkflowConfig{
			Mode:     TriggerGH,
			File:     "release-py.yml",
			TokenEnv: "GITHUB_TOKEN",
		},
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	switch {
	case len(c.VersionFiles) == 0:
		return fmt.Errorf("version_files must list at least one manifest")
	case c.Workspace.File == "":
		return fmt.Errorf("workspace.file is required")
	case c.Workspace.Member == "":
		return fmt.Errorf("workspace.member is required")
	case c.Git.Remote == "":
		return fmt.Errorf("git.remote is required")
	case c.Docs.Enabled() && c.Docs.Output == "":
		return fmt.Errorf("docs.output is required when docs.command is set")
	}

	switch c.Workflow.Mode {
	case TriggerGH, TriggerAPI:
	default:
		return fmt.Errorf("workflow.mode must be %q or %q, got %q", TriggerGH, TriggerAPI, c.Workflow.Mode)
	}
	if c.Workflow.File == "" {
		return fmt.Errorf("workflow.file is required")
	}
	if r := c.Workflow.Repository; r != "" {
		owner, name, ok := strings.Cut(r, "/")
		if !ok || owner == "" || name == "" {
			return fmt.Errorf("workflow.repository must be owner/name, got %q", r)
		}
	}
	if c.Workflow.Mode == TriggerAPI && c.Workflow.TokenEnv == "" {
		return fmt.Errorf("workflow.token_env is required in api mode")
	}

	for _, kind := range []string{CommitPrepare, CommitInclude, CommitExclude} {
		if _, err := c.CommitMessage(kind, "0.0.0"); err != nil {
			return err
		}
	}
	return nil
}

// PrimaryVersionFile returns the manifest the current version is read from.
func (c *Config) PrimaryVersionFile() string {
	if len(c.VersionFiles) == 0 {
		return ""
	}
	return c.VersionFiles[0]
}

// TagName returns the release tag for version.
func (c *Config) TagName(version string) string {
	return c.Git.TagPrefix + version
}

// CommitMessage expands the commit message template of the given kind.
func (c *Config) CommitMessage(kind, version string) (string, error) {
	var tmpl string
	switch kind {
	case CommitPrepare:
		tmpl = c.Commits.Prepare
	case CommitInclude:
		tmpl = c.Commits.Include
	case CommitExclude:
		tmpl = c.Commits.Exclude
	default:
		return "", fmt.Errorf("unknown commit message kind: %s", kind)
	}
	if strings.TrimSpace(tmpl) == "" {
		return "", fmt.Errorf("commits.%s is empty", kind)
	}
	return ExpandTemplate(tmpl, MessageData{Version: version, Member: c.Workspace.Member})
}

// ExpandTemplate executes a text/template string against data.
func ExpandTemplate(tmplStr string, data MessageData) (string, error) {
	tmpl, err := template.New("message").Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

package mcp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/shipwright/internal/manifest"
	"github.com/gorewood/shipwright/internal/release"
	"github.com/gorewood/shipwright/internal/workspace"
)

func (e *Env) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(e.Root, rel)
}

// --- Current version tool ---

// CurrentVersionInput is the input for the current_version tool (no parameters needed).
type CurrentVersionInput struct{}

// ManifestVersion is the version found in one manifest.
type ManifestVersion struct {
	Path    string `json:"path"    jsonschema:"manifest path relative to the repository root"`
	Version string `json:"version" jsonschema:"version value"`
}

// CurrentVersionOutput is the output for the current_version tool.
type CurrentVersionOutput struct {
	Version   string            `json:"version"   jsonschema:"current version from the primary manifest"`
	Manifests []ManifestVersion `json:"manifests" jsonschema:"version of every configured manifest"`
	InSync    bool              `json:"in_sync"   jsonschema:"whether every manifest carries the same version"`
}

func handleCurrentVersion(env *Env) mcp.ToolHandlerFor[CurrentVersionInput, CurrentVersionOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ CurrentVersionInput) (*mcp.CallToolResult, CurrentVersionOutput, error) {
		out := CurrentVersionOutput{InSync: true}
		for i, file := range env.Config.VersionFiles {
			version, err := manifest.ReadVersion(env.path(file))
			if err != nil {
				return nil, CurrentVersionOutput{}, fmt.Errorf("reading version: %w", err)
			}
			if i == 0 {
				out.Version = version
			} else if version != out.Version {
				out.InSync = false
			}
			out.Manifests = append(out.Manifests, ManifestVersion{Path: file, Version: version})
		}
		return nil, out, nil
	}
}

// --- Workspace members tool ---

// WorkspaceMembersInput is the input for the workspace_members tool (no parameters needed).
type WorkspaceMembersInput struct{}

// WorkspaceMembersOutput is the output for the workspace_members tool.
type WorkspaceMembersOutput struct {
	File    string   `json:"file"    jsonschema:"workspace manifest path"`
	Members []string `json:"members" jsonschema:"workspace members in file order"`
	Member  string   `json:"member"  jsonschema:"member toggled during a release"`
	Present bool     `json:"present" jsonschema:"whether the toggled member is currently listed"`
}

func handleWorkspaceMembers(env *Env) mcp.ToolHandlerFor[WorkspaceMembersInput, WorkspaceMembersOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ WorkspaceMembersInput) (*mcp.CallToolResult, WorkspaceMembersOutput, error) {
		ws := env.Config.Workspace
		members, err := workspace.Members(env.path(ws.File))
		if err != nil {
			return nil, WorkspaceMembersOutput{}, fmt.Errorf("reading workspace: %w", err)
		}

		out := WorkspaceMembersOutput{File: ws.File, Members: members, Member: ws.Member}
		for _, m := range members {
			if m == ws.Member {
				out.Present = true
				break
			}
		}
		return nil, out, nil
	}
}

// --- Release plan tool ---

// ReleasePlanInput is the input for the release_plan tool.
type ReleasePlanInput struct {
	Version string `json:"version" jsonschema:"version to plan a release for"`
}

// ReleasePlanOutput is the output for the release_plan tool.
type ReleasePlanOutput struct {
	Current   string         `json:"current"              jsonschema:"current version"`
	Version   string         `json:"version"              jsonschema:"planned version"`
	Tag       string         `json:"tag"                  jsonschema:"release tag name"`
	TagExists bool           `json:"tag_exists,omitempty" jsonschema:"whether the tag already exists (the release would be refused)"`
	Steps     []release.Step `json:"steps"                jsonschema:"ordered release steps"`
}

func handleReleasePlan(env *Env) mcp.ToolHandlerFor[ReleasePlanInput, ReleasePlanOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ReleasePlanInput) (*mcp.CallToolResult, ReleasePlanOutput, error) {
		if input.Version == "" {
			return nil, ReleasePlanOutput{}, errors.New("version is required")
		}

		current, err := manifest.ReadVersion(env.path(env.Config.PrimaryVersionFile()))
		if err != nil {
			return nil, ReleasePlanOutput{}, fmt.Errorf("reading version: %w", err)
		}
		steps, err := release.Plan(env.Config, input.Version)
		if err != nil {
			return nil, ReleasePlanOutput{}, fmt.Errorf("building plan: %w", err)
		}

		out := ReleasePlanOutput{
			Current: current,
			Version: input.Version,
			Tag:     env.Config.TagName(input.Version),
			Steps:   steps,
		}
		if env.Tags != nil {
			exists, err := env.Tags.TagExists(out.Tag)
			if err != nil {
				return nil, ReleasePlanOutput{}, fmt.Errorf("checking tag: %w", err)
			}
			out.TagExists = exists
		}
		return nil, out, nil
	}
}

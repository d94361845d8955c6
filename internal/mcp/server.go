// Package mcp provides a Model Context Protocol server for shipwright.
// It exposes read-only release inspection as MCP tools so an agent can check
// a repository before an operator runs a release.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/shipwright/internal/config"
)

// TagChecker reports whether a release tag already exists.
type TagChecker interface {
	TagExists(name string) (bool, error)
}

// Env is what the tools inspect: the loaded configuration, the repository
// root that relative config paths resolve against, and an optional tag
// lookup.
type Env struct {
	Config *config.Config
	Root   string
	Tags   TagChecker
}

// NewServer creates an MCP server with all shipwright tools registered.
func NewServer(version string, env *Env) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "shipwright",
		Version: version,
	}, nil)
	registerTools(server, env)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// registerTools adds all shipwright tools to the server.
func registerTools(server *mcp.Server, env *Env) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "current_version",
		Description: "Read the version of every configured package manifest. The first manifest is the release's source of truth; mismatches are reported.",
		Annotations: readOnlyAnnotations(),
	}, handleCurrentVersion(env))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "workspace_members",
		Description: "List the workspace members and whether the toggled member is currently included.",
		Annotations: readOnlyAnnotations(),
	}, handleWorkspaceMembers(env))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "release_plan",
		Description: "Describe the ordered steps a release of the given version would run, including confirmation gates. Does not modify anything.",
		Annotations: readOnlyAnnotations(),
	}, handleReleasePlan(env))
}

// Package release sequences a release run.
//
// A run bumps the version in every configured manifest, removes the
// configured member from the workspace, regenerates the docs, and then walks
// three commit/push cycles:
//
//  1. the public-distribution commit, optionally tagged,
//  2. the package-specific commit with the member restored, optionally
//     followed by the packaging workflow,
//  3. the commit that removes the member again.
//
// The operator confirms the diff before each commit. Declining a diff gate
// restores the files touched so far and ends the run with an aborted error;
// declining the tag or workflow question only skips that action. Every other
// failure stops the run where it happened.
package release

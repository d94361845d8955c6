// Package output provides structured output handling for the shipwright CLI.
//
// # Printer
//
// The Printer is the single path for user-facing text. Read-only commands
// honor the --json flag; the interactive release command always prints
// human-readable output:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonMode, output.IsTTY(cmd.OutOrStdout()))
//	printer.Step(1, "Committing and pushing changes...")
//	printer.Diff(diff)
//	printer.Success(map[string]any{"message": "Release process completed."})
//
// Styling uses lipgloss and is disabled when output is piped or --color never
// is set.
//
// # Exit Codes
//
//	output.ExitSuccess     // 0
//	output.ExitUserError   // 1: bad args, missing file, unmatched pattern
//	output.ExitSystemError // 2: external command or I/O failure
//	output.ExitConflict    // 3: release tag already exists
//	output.ExitAborted     // 4: operator declined a confirmation gate
//
// Errors built with the constructors (NewUserError, NewSystemErrorWithCause,
// NewAbortedError, ...) carry their code up to main, which exits with
// [GetExitCode].
package output

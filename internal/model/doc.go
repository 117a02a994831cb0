// Package model defines the domain types and value objects for the
// runstack CLI.
//
// This package contains pure data structures with no external
// dependencies. All entities (ProcessRole, ProcessState, ProcessStatus,
// LaunchTopology) are transient representations of OS-owned process
// state — there are no persistent state files.
//
// The package also defines exit codes (ExitCode) and a custom error
// type (CLIError) that carries exit codes for proper OS process exit
// handling.
package model

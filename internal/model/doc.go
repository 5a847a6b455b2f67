// Package model defines the domain types and value objects for the
// qvenv CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (Environment, Interpreter, RequirementsFile, Action) are
// transient values built fresh for each invocation and discarded at exit.
// Nothing is persisted beyond the file system side effects they trigger.
//
// The package also defines exit codes (ExitCode), the error taxonomy
// (ErrorKind) and a custom error type (CLIError) that carries both, so the
// CLI layer can translate component failures into process exit codes.
package model

// Package venv discovers, creates and activates Python virtual
// environments, and installs requirements files into them.
//
// Environment creation itself is delegated to the interpreter's own venv
// module (`python -m venv <path>`); this package only decides where,
// enforces the "never clobber without --force" precondition, and reports
// what the user should do next.
//
// Activation cannot be performed by qvenv: activating mutates the calling
// shell's environment, which a child process has no access to. Activate
// therefore writes a small helper script (POSIX) or prints the command to
// run (Windows) and leaves the last step to the user's shell.
package venv

// Package model defines the domain types for the qvenv CLI.
//
// All entities in this package are process-local values. They are used
// for passing data between the discovery, interpreter selection and
// action components, and are never written to disk.
package model

import "fmt"

// Action identifies which of the mutually exclusive operations an
// invocation performs. Exactly one Action is selected per process, and it
// is derived exclusively from CLI input.
type Action string

const (
	// ActionCreate creates a new environment (the default when no
	// subcommand is given).
	ActionCreate Action = "create"

	// ActionActivate locates the environment in the working directory and
	// emits an activation helper for the user's shell.
	ActionActivate Action = "activate"

	// ActionInstallRequirements installs requirements.txt (or
	// requirements.pip) into the environment.
	ActionInstallRequirements Action = "requirements"

	// ActionSelfInstall symlinks the running binary into a PATH directory.
	ActionSelfInstall Action = "install"
)

// String returns the string representation of Action.
func (a Action) String() string {
	return string(a)
}

// DefaultEnvPath is the environment directory created when no path
// argument is given.
const DefaultEnvPath = "venv"

// DefaultCandidates lists the conventional environment directory names in
// priority order. Discovery takes the first one that exists and carries a
// marker file; candidates are never merged.
var DefaultCandidates = []string{".venv", "venv", ".env", "env", "virtualenv", ".virtualenv"}

// DefaultInterpreters lists the interpreter executables probed during
// selection, in order. "Latest" means whichever of these answers first,
// not a comparison of installed versions.
var DefaultInterpreters = []string{"python3", "python"}

// DefaultRequirementsFiles lists the requirements file names looked up in
// the working directory, in order of preference.
var DefaultRequirementsFiles = []string{"requirements.txt", "requirements.pip"}

// Environment is a virtual environment directory, either discovered by
// name convention or freshly created.
type Environment struct {
	// Name is the directory's base name (e.g. ".venv").
	Name string

	// Path is the absolute path to the environment directory.
	Path string

	// ActivateScript is the OS-specific activation script inside the
	// environment (bin/activate or Scripts\activate). It may not exist
	// when the environment was recognized through its interpreter only.
	ActivateScript string

	// Python is the environment-local interpreter path.
	Python string
}

// Interpreter is the result of interpreter selection: the executable name
// that answered the version probe and the version it reported.
type Interpreter struct {
	// Name is the executable name as it was invoked (e.g. "python3").
	Name string

	// Version is the version token reported by `<name> --version`
	// (e.g. "3.11.4").
	Version string
}

// String returns a human-readable representation such as "python3 (3.11.4)".
func (i Interpreter) String() string {
	if i.Version == "" {
		return i.Name
	}
	return fmt.Sprintf("%s (%s)", i.Name, i.Version)
}

// RequirementsFile is the requirements file chosen for installation.
type RequirementsFile struct {
	// Name is the file name as listed in the lookup order
	// (e.g. "requirements.txt").
	Name string

	// Path is the absolute path to the file.
	Path string
}

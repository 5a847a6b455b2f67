// Package platform describes where a Python virtual environment keeps its
// scripts and interpreter on each OS family.
//
// The venv module lays environments out differently on Windows (Scripts\,
// python.exe) and on every other system (bin/, python). Layout captures
// those differences so discovery, activation and the requirements installer
// never branch on runtime.GOOS themselves. The GOOS value is an input so
// tests can exercise the Windows layout on any host.
package platform

import (
	"path/filepath"
	"runtime"
	"slices"
)

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
)

// Family is the OS family that decides environment layout and activation
// style.
type Family string

const (
	// FamilyPOSIX covers Linux, macOS and the BSDs: bin/ layout, activation
	// through `source`.
	FamilyPOSIX Family = "posix"

	// FamilyWindows uses the Scripts\ layout and runs activation scripts
	// directly.
	FamilyWindows Family = "windows"
)

// FamilyOf maps a GOOS value to its OS family.
func FamilyOf(goos string) Family {
	if goos == Windows {
		return FamilyWindows
	}
	return FamilyPOSIX
}

// Layout resolves OS-specific paths inside an environment directory.
type Layout struct {
	// GOOS is the operating system the layout was built for.
	GOOS string
}

// LayoutFor returns the environment layout for the given GOOS value.
func LayoutFor(goos string) Layout {
	return Layout{GOOS: goos}
}

// Current returns the layout of the running OS.
func Current() Layout {
	return LayoutFor(runtime.GOOS)
}

// Family returns the layout's OS family.
func (l Layout) Family() Family {
	return FamilyOf(l.GOOS)
}

// IsWindows reports whether the layout uses the Windows conventions.
func (l Layout) IsWindows() bool {
	return l.Family() == FamilyWindows
}

// BinDir returns the name of the directory holding scripts and
// executables: "Scripts" on Windows, "bin" elsewhere.
func (l Layout) BinDir() string {
	if l.IsWindows() {
		return "Scripts"
	}
	return "bin"
}

// ActivateScript returns the path of the generic activation script.
func (l Layout) ActivateScript(envPath string) string {
	return filepath.Join(envPath, l.BinDir(), "activate")
}

// ActivateBatch returns the cmd.exe activation script. It is only
// meaningful on Windows; other layouts return an empty string.
func (l Layout) ActivateBatch(envPath string) string {
	if !l.IsWindows() {
		return ""
	}
	return filepath.Join(envPath, l.BinDir(), "activate.bat")
}

// Python returns the environment-local interpreter path.
func (l Layout) Python(envPath string) string {
	if l.IsWindows() {
		return filepath.Join(envPath, l.BinDir(), "python.exe")
	}
	return filepath.Join(envPath, l.BinDir(), "python")
}

// Pip returns the environment-local package manager path.
func (l Layout) Pip(envPath string) string {
	return filepath.Join(envPath, l.BinDir(), "pip")
}

// Markers returns the files whose presence confirms a directory is a
// genuine environment. Any one of them is sufficient.
func (l Layout) Markers(envPath string) []string {
	return []string{l.ActivateScript(envPath), l.Python(envPath)}
}

// ActivateCommand returns what a user types to activate the environment:
// `source <script>` on POSIX, the script path itself on Windows.
func (l Layout) ActivateCommand(script string) string {
	if l.IsWindows() {
		return script
	}
	return "source " + script
}

// SplitPathList splits a PATH value into its directories, dropping empty
// entries.
func SplitPathList(pathEnv string) []string {
	var dirs []string
	for _, dir := range filepath.SplitList(pathEnv) {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// InPathList reports whether dir appears in the PATH value. Entries are
// compared after filepath.Clean so "/usr/local/bin/" matches
// "/usr/local/bin".
func InPathList(pathEnv, dir string) bool {
	want := filepath.Clean(dir)
	return slices.ContainsFunc(SplitPathList(pathEnv), func(entry string) bool {
		return filepath.Clean(entry) == want
	})
}

// Package selfinstall makes the running qvenv binary available on PATH by
// symlinking it into a common executable directory.
//
// The destination is the first of a short list of directories that both
// exists and is already on PATH (by default /usr/local/bin, then
// ~/.local/bin). When none qualifies, ~/.local/bin is created and used, and
// the user is told to add it to PATH. Existing entries are never
// overwritten.
package selfinstall

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mmr-tortoise/qvenv/internal/logging"
	"github.com/mmr-tortoise/qvenv/internal/model"
	"github.com/mmr-tortoise/qvenv/internal/platform"
)

// DefaultLinkName is the name of the symlink created in the bin directory.
const DefaultLinkName = "qvenv"

// fallbackDir is the user-local directory used when no candidate is on
// PATH. It is always the last default candidate.
const fallbackDir = "~/.local/bin"

// DefaultBinDirs lists the destination candidates in priority order.
// A leading "~" is expanded to the home directory.
var DefaultBinDirs = []string{"/usr/local/bin", fallbackDir}

// Options configures Install. Every input that would otherwise come from
// process-global state (executable path, PATH, home, GOOS) is explicit.
type Options struct {
	// Executable is the absolute path of the running binary, with
	// symlinks resolved.
	Executable string

	// PathEnv is the value of the PATH environment variable.
	PathEnv string

	// HomeDir is the user's home directory, used to expand "~".
	HomeDir string

	// GOOS selects platform behavior. Self-install is unsupported on
	// Windows.
	GOOS string

	// BinDirs overrides DefaultBinDirs.
	BinDirs []string

	// LinkName overrides DefaultLinkName.
	LinkName string

	// Logger receives progress lines. Nil discards them.
	Logger *log.Logger
}

// Result describes what Install did.
type Result struct {
	// LinkPath is the symlink location.
	LinkPath string

	// Created is false when an entry already existed at LinkPath and
	// Install left it alone.
	Created bool

	// CreatedDir is true when the fallback directory had to be created.
	CreatedDir bool

	// OnPath reports whether the destination directory is on PATH.
	OnPath bool
}

// Install symlinks opts.Executable into a PATH directory.
//
// Anything already present at the destination (a previous install, a
// different binary, even a dangling link) makes Install a successful no-op.
// After creating the link it marks the target executable; failing to do so
// is only a warning because the link itself is in place. A destination
// that is not on PATH produces a warning, not an error.
//
// Entries starting with "~" need opts.HomeDir. Without it they are skipped
// during selection, and a "~" fallback is an error rather than a path
// relative to the working directory.
//
// On Windows Install always fails with KindUnsupportedPlatform, since
// creating symlinks there needs administrator rights.
func Install(opts Options) (Result, error) {
	logger := logging.OrDiscard(opts.Logger)

	if platform.FamilyOf(opts.GOOS) == platform.FamilyWindows {
		return Result{}, model.NewCLIError(model.KindUnsupportedPlatform,
			"symlink creation on Windows requires administrator privileges").
			WithHint("Please manually add %s to your PATH", filepath.Dir(opts.Executable))
	}

	if opts.Executable == "" || !filepath.IsAbs(opts.Executable) {
		return Result{}, model.NewCLIError(model.KindInvalidInput,
			fmt.Sprintf("cannot determine absolute path of qvenv executable: %q", opts.Executable))
	}

	linkName := opts.LinkName
	if linkName == "" {
		linkName = DefaultLinkName
	}
	binDirs := opts.BinDirs
	if len(binDirs) == 0 {
		binDirs = DefaultBinDirs
	}

	var res Result
	targetDir := selectDir(binDirs, opts.PathEnv, opts.HomeDir)
	if targetDir == "" {
		last := binDirs[len(binDirs)-1]
		if needsHome(last) && opts.HomeDir == "" {
			return Result{}, model.NewCLIError(model.KindFileSystem,
				"cannot determine home directory to expand "+last).
				WithHint("Set HOME or list absolute directories under bin_dirs")
		}
		targetDir = expandHome(last, opts.HomeDir)
		if !filepath.IsAbs(targetDir) {
			return Result{}, model.NewCLIError(model.KindInvalidInput,
				fmt.Sprintf("install directory must be absolute: %q", targetDir))
		}
		if _, err := os.Stat(targetDir); os.IsNotExist(err) {
			if err := os.MkdirAll(targetDir, 0o755); err != nil {
				return Result{}, model.WrapCLIError(model.KindFileSystem, "error creating directory "+targetDir, err)
			}
			res.CreatedDir = true
			logger.Infof("Created directory: %s", targetDir)
			logger.Infof("Remember to add %s to your PATH", targetDir)
		}
	}

	res.LinkPath = filepath.Join(targetDir, linkName)
	res.OnPath = platform.InPathList(opts.PathEnv, targetDir)

	// Lstat so a dangling link also counts as "already installed".
	if _, err := os.Lstat(res.LinkPath); err == nil {
		logger.Infof("Symlink already exists at %s", res.LinkPath)
		return res, nil
	}

	if err := os.Symlink(opts.Executable, res.LinkPath); err != nil {
		return Result{}, model.WrapCLIError(model.KindFileSystem, "error creating symlink", err)
	}
	res.Created = true

	// Chmod follows the link and marks the binary itself executable.
	if err := os.Chmod(res.LinkPath, 0o755); err != nil {
		logger.Warnf("Could not mark %s executable: %v", opts.Executable, err)
	}
	logger.Infof("Symlink created at %s", res.LinkPath)

	if !res.OnPath {
		logger.Warnf("NOTE: %s is not in your PATH", targetDir)
		if targetDir == expandHome(fallbackDir, opts.HomeDir) {
			logger.Info("Consider adding it with: export PATH=$PATH:~/.local/bin")
		}
	}

	return res, nil
}

// selectDir returns the first candidate that exists as a directory and is
// on PATH, or an empty string.
func selectDir(candidates []string, pathEnv, home string) string {
	for _, dir := range candidates {
		if needsHome(dir) && home == "" {
			continue
		}
		dir = expandHome(dir, home)
		if !filepath.IsAbs(dir) {
			continue
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if platform.InPathList(pathEnv, dir) {
			return dir
		}
	}
	return ""
}

// needsHome reports whether dir starts with "~" and so needs a home
// directory to resolve.
func needsHome(dir string) bool {
	return dir == "~" || strings.HasPrefix(dir, "~/")
}

// expandHome replaces a leading "~" with home.
func expandHome(dir, home string) string {
	if dir == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(dir, "~/"); ok {
		return filepath.Join(home, rest)
	}
	return dir
}

package selfinstall

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/qvenv/internal/logging"
	"github.com/mmr-tortoise/qvenv/internal/model"
	"github.com/mmr-tortoise/qvenv/internal/platform"
)

// fixture holds a fake home directory, a fake qvenv binary and a system
// bin directory, all under t.TempDir().
type fixture struct {
	home   string
	sysBin string
	exe    string
	log    *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require administrator rights on Windows")
	}

	root := t.TempDir()
	f := &fixture{
		home:   filepath.Join(root, "home"),
		sysBin: filepath.Join(root, "usr", "local", "bin"),
		exe:    filepath.Join(root, "opt", "qvenv", "qvenv"),
		log:    &bytes.Buffer{},
	}
	require.NoError(t, os.MkdirAll(f.home, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(f.exe), 0o755))
	require.NoError(t, os.WriteFile(f.exe, []byte("#!/bin/sh\n"), 0o644))
	return f
}

// options builds Options with the fixture's directories as candidates.
func (f *fixture) options(pathDirs ...string) Options {
	return Options{
		Executable: f.exe,
		PathEnv:    strings.Join(pathDirs, string(filepath.ListSeparator)),
		HomeDir:    f.home,
		GOOS:       "linux",
		BinDirs:    []string{f.sysBin, "~/.local/bin"},
		Logger:     logging.New(f.log, false),
	}
}

// TestInstall_FirstDirOnPath verifies the first existing candidate on PATH
// receives the link.
func TestInstall_FirstDirOnPath(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.sysBin, 0o755))
	localBin := filepath.Join(f.home, ".local", "bin")
	require.NoError(t, os.MkdirAll(localBin, 0o755))

	res, err := Install(f.options(localBin, f.sysBin))
	require.NoError(t, err)

	link := filepath.Join(f.sysBin, "qvenv")
	assert.Equal(t, Result{LinkPath: link, Created: true, OnPath: true}, res)

	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, f.exe, target)

	info, err := os.Stat(f.exe)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	assert.Contains(t, f.log.String(), "Symlink created at "+link)
	assert.NotContains(t, f.log.String(), "not in your PATH")
}

// TestInstall_SkipsDirNotOnPath verifies an existing directory that is not
// on PATH is passed over.
func TestInstall_SkipsDirNotOnPath(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.sysBin, 0o755))
	localBin := filepath.Join(f.home, ".local", "bin")
	require.NoError(t, os.MkdirAll(localBin, 0o755))

	res, err := Install(f.options(localBin))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(localBin, "qvenv"), res.LinkPath)
	assert.True(t, res.OnPath)
}

// TestInstall_FallbackCreatesDir verifies ~/.local/bin is created when no
// candidate qualifies, and that the PATH warning is emitted.
func TestInstall_FallbackCreatesDir(t *testing.T) {
	f := newFixture(t)

	res, err := Install(f.options("/usr/bin"))
	require.NoError(t, err)

	localBin := filepath.Join(f.home, ".local", "bin")
	assert.DirExists(t, localBin)
	assert.Equal(t, filepath.Join(localBin, "qvenv"), res.LinkPath)
	assert.True(t, res.Created)
	assert.True(t, res.CreatedDir)
	assert.False(t, res.OnPath)

	out := f.log.String()
	assert.Contains(t, out, "Created directory: "+localBin)
	assert.Contains(t, out, "NOTE: "+localBin+" is not in your PATH")
	assert.Contains(t, out, "export PATH=$PATH:~/.local/bin")
}

// TestInstall_ExistingLinkIsNoOp verifies an existing destination is never
// overwritten, even when it points elsewhere.
func TestInstall_ExistingLinkIsNoOp(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.sysBin, 0o755))
	link := filepath.Join(f.sysBin, "qvenv")
	other := filepath.Join(t.TempDir(), "other-qvenv")
	require.NoError(t, os.Symlink(other, link)) // dangling on purpose

	res, err := Install(f.options(f.sysBin))
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, link, res.LinkPath)

	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, other, target)
	assert.Contains(t, f.log.String(), "Symlink already exists at "+link)
}

// TestInstall_CustomLinkName verifies the configured link name is used.
func TestInstall_CustomLinkName(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.sysBin, 0o755))

	opts := f.options(f.sysBin)
	opts.LinkName = "mkvenv"
	res, err := Install(opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.sysBin, "mkvenv"), res.LinkPath)
}

// TestInstall_SymlinkFails verifies a file system error is reported.
func TestInstall_SymlinkFails(t *testing.T) {
	f := newFixture(t)
	// A regular file in place of ~/.local blocks the fallback directory.
	blocker := filepath.Join(f.home, ".local")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o644))

	_, err := Install(f.options())
	require.Error(t, err)
	assert.Equal(t, model.KindFileSystem, model.KindOf(err))
}

func TestInstall_Windows(t *testing.T) {
	_, err := Install(Options{Executable: `C:\tools\qvenv.exe`, GOOS: platform.Windows})
	require.Error(t, err)
	assert.Equal(t, model.KindUnsupportedPlatform, model.KindOf(err))
}

func TestInstall_RelativeExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unsupported on Windows")
	}
	_, err := Install(Options{Executable: "qvenv", GOOS: "linux"})
	require.Error(t, err)
	assert.Equal(t, model.KindInvalidInput, model.KindOf(err))
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/home/me", expandHome("~", "/home/me"))
	assert.Equal(t, filepath.Join("/home/me", ".local", "bin"), expandHome("~/.local/bin", "/home/me"))
	assert.Equal(t, "/usr/local/bin", expandHome("/usr/local/bin", "/home/me"))
	assert.Equal(t, "~other/bin", expandHome("~other/bin", "/home/me"))
}

// TestInstall_NoHomeDir verifies a "~" fallback is refused when the home
// directory is unknown instead of resolving relative to the working
// directory.
func TestInstall_NoHomeDir(t *testing.T) {
	f := newFixture(t)
	t.Chdir(t.TempDir())

	opts := f.options("/usr/bin")
	opts.HomeDir = ""
	res, err := Install(opts)
	require.Error(t, err)
	assert.Equal(t, model.KindFileSystem, model.KindOf(err))
	assert.Contains(t, err.Error(), "cannot determine home directory")
	assert.Empty(t, res.LinkPath)
	assert.NoDirExists(t, ".local")
}

// TestInstall_NoHomeDirUsesAbsoluteCandidate verifies an absolute candidate
// on PATH still works without a home directory.
func TestInstall_NoHomeDirUsesAbsoluteCandidate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.sysBin, 0o755))

	opts := f.options(f.sysBin)
	opts.HomeDir = ""
	res, err := Install(opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.sysBin, "qvenv"), res.LinkPath)
}

// TestInstall_RelativeBinDir verifies a relative fallback directory is
// rejected before anything is created.
func TestInstall_RelativeBinDir(t *testing.T) {
	f := newFixture(t)
	t.Chdir(t.TempDir())

	opts := f.options()
	opts.BinDirs = []string{"bin"}
	_, err := Install(opts)
	require.Error(t, err)
	assert.Equal(t, model.KindInvalidInput, model.KindOf(err))
	assert.NoDirExists(t, "bin")
}

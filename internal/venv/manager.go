package venv

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mmr-tortoise/qvenv/internal/logging"
	"github.com/mmr-tortoise/qvenv/internal/model"
	"github.com/mmr-tortoise/qvenv/internal/platform"
	"github.com/mmr-tortoise/qvenv/internal/process"
)

// DefaultHelperScript is where Activate writes the POSIX helper script.
// The path is shared by every user of the machine; Activate refuses to
// write through a symlink planted there.
const DefaultHelperScript = "/tmp/qvenv_activate.sh"

// Options configures a Manager. WorkDir and Layout are explicit inputs so
// nothing in this package reads the process working directory or GOOS.
type Options struct {
	// WorkDir is the directory searched for environments and requirements
	// files. It is also the working directory of pip.
	WorkDir string

	// Layout selects the OS-specific environment layout.
	Layout platform.Layout

	// Runner executes interpreter and pip commands.
	Runner process.Runner

	// Logger receives progress lines. Nil discards them.
	Logger *log.Logger

	// Candidates overrides model.DefaultCandidates.
	Candidates []string

	// RequirementsFiles overrides model.DefaultRequirementsFiles.
	RequirementsFiles []string

	// HelperScript overrides DefaultHelperScript.
	HelperScript string

	// RemoveAll deletes an existing target before a forced creation.
	// Nil means os.RemoveAll.
	RemoveAll func(path string) error
}

// Manager performs environment operations rooted at one working directory.
type Manager struct {
	workDir           string
	layout            platform.Layout
	runner            process.Runner
	logger            *log.Logger
	candidates        []string
	requirementsFiles []string
	helperScript      string
	removeAll         func(path string) error
}

// NewManager creates a Manager, filling unset options with their defaults.
func NewManager(opts Options) *Manager {
	m := &Manager{
		workDir:           opts.WorkDir,
		layout:            opts.Layout,
		runner:            opts.Runner,
		logger:            logging.OrDiscard(opts.Logger),
		candidates:        opts.Candidates,
		requirementsFiles: opts.RequirementsFiles,
		helperScript:      opts.HelperScript,
		removeAll:         opts.RemoveAll,
	}
	if m.layout.GOOS == "" {
		m.layout = platform.Current()
	}
	if len(m.candidates) == 0 {
		m.candidates = model.DefaultCandidates
	}
	if len(m.requirementsFiles) == 0 {
		m.requirementsFiles = model.DefaultRequirementsFiles
	}
	if m.helperScript == "" {
		m.helperScript = DefaultHelperScript
	}
	if m.removeAll == nil {
		m.removeAll = os.RemoveAll
	}
	return m
}

// Find locates the environment in the working directory.
//
// Candidate names are checked in priority order. A candidate counts only
// when it exists and contains one of the layout's marker files (activation
// script or interpreter), so an unrelated directory that happens to be
// called "env" is skipped. The search never recurses and never leaves the
// working directory. The first validated match wins; later candidates are
// not examined.
func (m *Manager) Find() (model.Environment, error) {
	m.logger.Infof("Searching for virtual environment in: %s", m.workDir)

	for _, name := range m.candidates {
		path := filepath.Join(m.workDir, name)
		if !exists(path) {
			continue
		}
		if !m.hasMarker(path) {
			m.logger.Debugf("Skipping %s: no activation script or interpreter under %s", name, m.layout.BinDir())
			continue
		}

		m.logger.Infof("Found virtual environment: %s", name)
		return m.environment(name, path), nil
	}

	return model.Environment{}, model.NewCLIError(model.KindNotFound, "no virtual environment found in current directory").
		WithHint("Searched for: %s", strings.Join(m.candidates, ", "))
}

// hasMarker reports whether any marker file exists inside path.
func (m *Manager) hasMarker(path string) bool {
	for _, marker := range m.layout.Markers(path) {
		if exists(marker) {
			return true
		}
	}
	return false
}

// environment builds the Environment value for a directory.
func (m *Manager) environment(name, path string) model.Environment {
	return model.Environment{
		Name:           name,
		Path:           path,
		ActivateScript: m.layout.ActivateScript(path),
		Python:         m.layout.Python(path),
	}
}

// exists reports whether anything is present at path.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

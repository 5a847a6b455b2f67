package venv

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/qvenv/internal/model"
	"github.com/mmr-tortoise/qvenv/internal/process"
)

// FindRequirements returns the first requirements file present in the
// working directory, in lookup order (requirements.txt before
// requirements.pip by default).
//
// Absence is reported as a KindNotFound error, which callers treat as a
// warning or a failure depending on context.
func (m *Manager) FindRequirements() (model.RequirementsFile, error) {
	m.logger.Info("Checking for requirements file...")

	for _, name := range m.requirementsFiles {
		path := filepath.Join(m.workDir, name)
		if exists(path) {
			m.logger.Infof("Found requirements file: %s", name)
			return model.RequirementsFile{Name: name, Path: path}, nil
		}
	}

	m.logger.Info("No requirements file found.")
	return model.RequirementsFile{}, model.NewCLIError(model.KindNotFound, "no requirements file found").
		WithHint("Looked for: %s", strings.Join(m.requirementsFiles, ", "))
}

// InstallRequirements installs the working directory's requirements file
// into the environment at envPath using the environment's own pip
// (`<env>/bin/pip install -r <file>`, or Scripts\pip on Windows).
//
// It returns the file that was installed. A missing requirements file is a
// KindNotFound error and no process is run; a non-zero pip exit is a
// KindExternalProcess error carrying pip's stderr.
func (m *Manager) InstallRequirements(ctx context.Context, envPath string) (model.RequirementsFile, error) {
	req, err := m.FindRequirements()
	if err != nil {
		return model.RequirementsFile{}, err
	}

	m.logger.Info("Installing requirements...")

	install := process.Command{
		Name: m.layout.Pip(envPath),
		Args: []string{"install", "-r", req.Name},
		Dir:  m.workDir,
	}
	res, err := m.runner.Run(ctx, install)
	if err != nil {
		return req, model.WrapCLIError(model.KindExternalProcess, "error installing requirements", err)
	}
	if !res.Success() {
		return req, model.NewCLIError(model.KindExternalProcess,
			fmt.Sprintf("error installing requirements: %s", strings.TrimSpace(res.Stderr)))
	}

	m.logger.Info("Requirements installed successfully!")
	return req, nil
}

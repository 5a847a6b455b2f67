package venv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/mmr-tortoise/qvenv/internal/model"
)

// Activation describes how the user can activate a discovered environment.
// Nothing in it has been executed; the caller prints it.
type Activation struct {
	// Env is the discovered environment.
	Env model.Environment

	// Script is the activation script the instructions point at. On
	// Windows this is activate.bat when present.
	Script string

	// HelperScript is the path of the generated POSIX helper. Empty on
	// Windows and when writing the helper failed.
	HelperScript string

	// Command is the primary instruction: `source <helper>` on POSIX,
	// the script path on Windows.
	Command string

	// Manual is the fallback instruction relative to the working
	// directory, e.g. "source .venv/bin/activate". Empty on Windows.
	Manual string

	// Direct is `source <activate script>` with an absolute, quoted path.
	// It is what the CLI prints on stdout for copy/paste or eval. Empty on
	// Windows.
	Direct string
}

// Activate finds the environment in the working directory and prepares the
// instructions to activate it.
//
// On POSIX it writes a helper script (see Options.HelperScript) that, when
// sourced, sources the environment's activate script and prints which
// python and pip are now first on PATH. Failure to write the helper is
// logged but not fatal: the direct `source` command still works. On
// Windows no file is written; activate.bat is preferred over activate.
//
// A KindNotFound error is returned when no environment is found, or when
// the environment was recognized through its interpreter but has no
// activation script.
func (m *Manager) Activate() (*Activation, error) {
	env, err := m.Find()
	if err != nil {
		return nil, err
	}

	if m.layout.IsWindows() {
		script := m.layout.ActivateBatch(env.Path)
		if !exists(script) {
			script = env.ActivateScript
		}
		if !exists(script) {
			return nil, model.NewCLIError(model.KindNotFound, fmt.Sprintf("activation script not found at %s", script))
		}
		return &Activation{Env: env, Script: script, Command: script}, nil
	}

	if !exists(env.ActivateScript) {
		return nil, model.NewCLIError(model.KindNotFound, fmt.Sprintf("activation script not found at %s", env.ActivateScript))
	}

	direct, err := sourceLine(env.ActivateScript)
	if err != nil {
		return nil, model.WrapCLIError(model.KindInvalidInput, "cannot quote activation script path", err)
	}
	manual, err := sourceLine(filepath.Join(env.Name, m.layout.BinDir(), "activate"))
	if err != nil {
		return nil, model.WrapCLIError(model.KindInvalidInput, "cannot quote activation script path", err)
	}

	act := &Activation{
		Env:     env,
		Script:  env.ActivateScript,
		Command: direct,
		Manual:  manual,
		Direct:  direct,
	}

	if err := m.writeHelper(env); err != nil {
		m.logger.Errorf("Error creating activation script: %v", err)
		return act, nil
	}

	helper, err := sourceLine(m.helperScript)
	if err != nil {
		return nil, model.WrapCLIError(model.KindInvalidInput, "cannot quote helper script path", err)
	}
	act.HelperScript = m.helperScript
	act.Command = helper
	return act, nil
}

// writeHelper renders the helper script for env and writes it, executable,
// to the configured helper path.
//
// The helper usually lives in a shared directory, so it is never written
// through a symlink: a previous regular file is removed and the new one is
// created exclusively, which fails if anything reappears at the path.
func (m *Manager) writeHelper(env model.Environment) error {
	script, err := RenderHelper(env)
	if err != nil {
		return err
	}

	if info, err := os.Lstat(m.helperScript); err == nil {
		if !info.Mode().IsRegular() {
			return fmt.Errorf("refusing to replace %s: not a regular file", m.helperScript)
		}
		if err := os.Remove(m.helperScript); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(m.helperScript, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o755)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(script); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// The umask may have stripped the execute bits.
	return os.Chmod(m.helperScript, 0o755)
}

// RenderHelper returns the text of the POSIX helper script for env.
//
// Every interpolated value is quoted for bash, and the result is parsed
// before it is returned, so a path containing spaces or quotes can never
// produce a script that runs something other than `source`.
func RenderHelper(env model.Environment) (string, error) {
	activate, err := syntax.Quote(env.ActivateScript, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("quoting %s: %w", env.ActivateScript, err)
	}
	banner, err := syntax.Quote(fmt.Sprintf("Virtual environment %s activated!", env.Name), syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("quoting environment name %q: %w", env.Name, err)
	}

	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	fmt.Fprintf(&b, "source %s\n", activate)
	fmt.Fprintf(&b, "echo %s\n", banner)
	b.WriteString("echo \"Python: $(which python)\"\n")
	b.WriteString("echo \"Pip: $(which pip)\"\n")
	script := b.String()

	if _, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(script), "qvenv_activate.sh"); err != nil {
		return "", fmt.Errorf("generated helper script is invalid: %w", err)
	}
	return script, nil
}

// sourceLine renders `source <path>` with path quoted for POSIX shells.
func sourceLine(path string) (string, error) {
	quoted, err := syntax.Quote(path, syntax.LangBash)
	if err != nil {
		return "", err
	}
	return "source " + quoted, nil
}

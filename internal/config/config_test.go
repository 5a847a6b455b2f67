package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/qvenv/internal/model"
)

// write creates dir/name with content and returns its path.
func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoad_Defaults verifies an empty environment yields DefaultConfig.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(LoadOptions{WorkDir: t.TempDir(), ConfigDir: t.TempDir()})
	require.NoError(t, err)

	want := DefaultConfig()
	assert.Equal(t, want.DefaultPath, cfg.DefaultPath)
	assert.Equal(t, []string{".venv", "venv", ".env", "env", "virtualenv", ".virtualenv"}, cfg.Candidates)
	assert.Equal(t, []string{"python3", "python"}, cfg.Interpreters)
	assert.Equal(t, 10*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, []string{"requirements.txt", "requirements.pip"}, cfg.RequirementsFiles)
	assert.Equal(t, "/tmp/qvenv_activate.sh", cfg.HelperScript)
	assert.Equal(t, "qvenv", cfg.LinkName)
	assert.Equal(t, []string{"/usr/local/bin", "~/.local/bin"}, cfg.BinDirs)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.Sources)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "config.yaml", `
default_path: .venv
interpreters: [python3.12, python3]
probe_timeout: 3s
verbose: true
`)

	cfg, err := Load(LoadOptions{ConfigDir: dir})
	require.NoError(t, err)
	assert.Equal(t, ".venv", cfg.DefaultPath)
	assert.Equal(t, []string{"python3.12", "python3"}, cfg.Interpreters)
	assert.Equal(t, 3*time.Second, cfg.ProbeTimeout)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "qvenv", cfg.LinkName, "unset keys keep their defaults")
	assert.Equal(t, []string{path}, cfg.Sources)
}

// TestLoad_JSONWithComments verifies comments and trailing commas are
// accepted in JSON config files.
func TestLoad_JSONWithComments(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "config.json", `{
  // where the activation helper goes
  "helper_script": "/var/tmp/activate-helper.sh",
  "candidates": [".venv", "venv",],
}`)

	cfg, err := Load(LoadOptions{ConfigDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "/var/tmp/activate-helper.sh", cfg.HelperScript)
	assert.Equal(t, []string{".venv", "venv"}, cfg.Candidates)
}

// TestLoad_FilePriority verifies config.yaml wins over config.json.
func TestLoad_FilePriority(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "config.json", `{"link_name": "from-json"}`)
	write(t, dir, "config.yaml", `link_name: from-yaml`)

	cfg, err := Load(LoadOptions{ConfigDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", cfg.LinkName)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "config.yaml", `link_name: ignored`)
	explicit := write(t, t.TempDir(), "custom.yml", `link_name: explicit`)

	cfg, err := Load(LoadOptions{ConfigDir: dir, ConfigFile: explicit})
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.LinkName)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
	assert.Equal(t, model.KindInvalidInput, model.KindOf(err))
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := write(t, t.TempDir(), "config.ini", "link_name = x\n")

	_, err := Load(LoadOptions{ConfigFile: path})
	require.Error(t, err)
	assert.Equal(t, model.KindInvalidInput, model.KindOf(err))
}

// TestLoad_Pyproject verifies [tool.qvenv] overrides the user file and that
// dashed keys are accepted.
func TestLoad_Pyproject(t *testing.T) {
	cfgDir := t.TempDir()
	write(t, cfgDir, "config.yaml", "default_path: from-user\nlink_name: from-user\n")

	work := t.TempDir()
	pyproject := write(t, work, "pyproject.toml", `
[project]
name = "demo"

[tool.qvenv]
default-path = ".venv"
requirements_files = ["requirements-dev.txt"]
probe_timeout = "2s"
`)

	cfg, err := Load(LoadOptions{WorkDir: work, ConfigDir: cfgDir})
	require.NoError(t, err)
	assert.Equal(t, ".venv", cfg.DefaultPath)
	assert.Equal(t, "from-user", cfg.LinkName)
	assert.Equal(t, []string{"requirements-dev.txt"}, cfg.RequirementsFiles)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, []string{filepath.Join(cfgDir, "config.yaml"), pyproject}, cfg.Sources)
}

// TestLoad_PyprojectWithoutTable verifies a pyproject.toml without a
// [tool.qvenv] table is ignored.
func TestLoad_PyprojectWithoutTable(t *testing.T) {
	work := t.TempDir()
	write(t, work, "pyproject.toml", "[project]\nname = \"demo\"\n")

	cfg, err := Load(LoadOptions{WorkDir: work, ConfigDir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, cfg.Sources)
}

func TestLoad_PyprojectInvalid(t *testing.T) {
	work := t.TempDir()
	write(t, work, "pyproject.toml", "[tool.qvenv\nbroken")

	_, err := Load(LoadOptions{WorkDir: work, ConfigDir: t.TempDir()})
	require.Error(t, err)
	assert.Equal(t, model.KindInvalidInput, model.KindOf(err))
}

// TestLoad_Env verifies QVENV_* variables override files.
func TestLoad_Env(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "config.yaml", "link_name: from-file\n")
	t.Setenv("QVENV_LINK_NAME", "from-env")
	t.Setenv("QVENV_PROBE_TIMEOUT", "750ms")
	t.Setenv("QVENV_VERBOSE", "true")

	cfg, err := Load(LoadOptions{ConfigDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LinkName)
	assert.Equal(t, 750*time.Millisecond, cfg.ProbeTimeout)
	assert.True(t, cfg.Verbose)
}

// TestLoad_EnvLookup verifies an injected lookup replaces the process
// environment.
func TestLoad_EnvLookup(t *testing.T) {
	t.Setenv("QVENV_LINK_NAME", "from-process")
	env := map[string]string{
		"QVENV_LINK_NAME":  "from-lookup",
		"QVENV_CANDIDATES": ".venv,env",
	}

	cfg, err := Load(LoadOptions{
		ConfigDir: t.TempDir(),
		Getenv:    func(key string) string { return env[key] },
	})
	require.NoError(t, err)
	assert.Equal(t, "from-lookup", cfg.LinkName)
	assert.Equal(t, []string{".venv", "env"}, cfg.Candidates)
}

// TestLoad_BareNumberTimeout verifies a probe_timeout without a unit is
// read as seconds in every layer.
func TestLoad_BareNumberTimeout(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		env      string
		expected time.Duration
	}{
		{"pyproject integer", "pyproject.toml", "[tool.qvenv]\nprobe-timeout = 5\n", "", 5 * time.Second},
		{"pyproject float", "pyproject.toml", "[tool.qvenv]\nprobe-timeout = 0.5\n", "", 500 * time.Millisecond},
		{"yaml integer", "config.yaml", "probe_timeout: 3\n", "", 3 * time.Second},
		{"json number", "config.json", `{"probe_timeout": 2}`, "", 2 * time.Second},
		{"env integer", "", "", "7", 7 * time.Second},
		{"env with unit", "", "", "250ms", 250 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				write(t, dir, tt.file, tt.content)
			}

			cfg, err := Load(LoadOptions{
				WorkDir:   dir,
				ConfigDir: dir,
				Getenv: func(key string) string {
					if key == "QVENV_PROBE_TIMEOUT" {
						return tt.env
					}
					return ""
				},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.ProbeTimeout)
		})
	}
}

// TestLoad_TimeoutTooShort verifies a nanosecond-scale timeout is rejected
// with a hint instead of silently failing every interpreter lookup.
func TestLoad_TimeoutTooShort(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "config.yaml", "probe_timeout: 5ns\n")

	_, err := Load(LoadOptions{ConfigDir: dir, Getenv: func(string) string { return "" }})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, "invalid configuration", cliErr.Message)
	require.Len(t, cliErr.Hints, 1)
	assert.Contains(t, cliErr.Hints[0], `use a duration such as "5s"`)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		hint   string
	}{
		{"empty default path", func(c *Config) { c.DefaultPath = " " }, "default_path"},
		{"no candidates", func(c *Config) { c.Candidates = nil }, "candidates"},
		{"no interpreters", func(c *Config) { c.Interpreters = nil }, "interpreters"},
		{"zero timeout", func(c *Config) { c.ProbeTimeout = 0 }, "probe_timeout"},
		{"nanosecond timeout", func(c *Config) { c.ProbeTimeout = 5 }, `use a duration such as "5s"`},
		{"no requirements files", func(c *Config) { c.RequirementsFiles = nil }, "requirements_files"},
		{"no helper", func(c *Config) { c.HelperScript = "" }, "helper_script"},
		{"link name with slash", func(c *Config) { c.LinkName = "bin/qvenv" }, "link_name"},
		{"no bin dirs", func(c *Config) { c.BinDirs = nil }, "bin_dirs"},
	}

	require.NoError(t, DefaultConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cliErr *model.CLIError
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, model.KindInvalidInput, cliErr.Kind)
			require.Len(t, cliErr.Hints, 1)
			assert.Contains(t, cliErr.Hints[0], tt.hint)
		})
	}
}

// TestConfig_YAML verifies the encoding used by "config show": durations
// are human readable and Sources is omitted.
func TestConfig_YAML(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources = []string{"/somewhere/config.yaml"}

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "probe_timeout: 10s\n")
	assert.Contains(t, string(out), "link_name: qvenv\n")
	assert.NotContains(t, string(out), "somewhere")
}

func TestDirFor(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		env      map[string]string
		expected string
	}{
		{"xdg", "linux", map[string]string{"XDG_CONFIG_HOME": "/xdg", "HOME": "/home/me"}, filepath.Join("/xdg", "qvenv")},
		{"xdg default", "linux", map[string]string{"HOME": "/home/me"}, filepath.Join("/home/me", ".config", "qvenv")},
		{"macos", "darwin", map[string]string{"XDG_CONFIG_HOME": "/xdg", "HOME": "/Users/me"}, filepath.Join("/Users/me", "Library", "Application Support", "qvenv")},
		{"windows appdata", "windows", map[string]string{"APPDATA": `C:\Users\me\AppData\Roaming`}, filepath.Join(`C:\Users\me\AppData\Roaming`, "qvenv")},
		{"windows profile", "windows", map[string]string{"USERPROFILE": `C:\Users\me`}, filepath.Join(`C:\Users\me`, "AppData", "Roaming", "qvenv")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, err := DirFor(tt.goos, func(key string) string { return tt.env[key] })
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dir)
		})
	}

	t.Run("no home", func(t *testing.T) {
		_, err := DirFor("linux", func(string) string { return "" })
		assert.Error(t, err)
	})
}

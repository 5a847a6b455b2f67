// Package config loads qvenv's layered configuration.
//
// Values are resolved in increasing priority:
//
//  1. built-in defaults (DefaultConfig)
//  2. the user config file, config.yaml / config.yml / config.json in Dir(),
//     or the file named by --config
//  3. the [tool.qvenv] table of pyproject.toml in the working directory
//  4. QVENV_* environment variables (QVENV_LINK_NAME, QVENV_PROBE_TIMEOUT, ...)
//
// CLI flags are applied on top by the cli package. JSON config files may
// contain comments and trailing commas. A bare number for probe_timeout is
// read as seconds, so "probe-timeout = 5" in pyproject.toml means 5s.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/qvenv/internal/interpreter"
	"github.com/mmr-tortoise/qvenv/internal/model"
	"github.com/mmr-tortoise/qvenv/internal/platform"
	"github.com/mmr-tortoise/qvenv/internal/selfinstall"
	"github.com/mmr-tortoise/qvenv/internal/venv"
)

const (
	// AppName names the config directory.
	AppName = "qvenv"

	// EnvPrefix is the prefix of environment variable overrides.
	EnvPrefix = "QVENV"

	// PyprojectFile is read from the working directory.
	PyprojectFile = "pyproject.toml"

	// MinTimeout is the shortest accepted probe_timeout. Anything
	// below it makes every interpreter version check time out.
	MinTimeout = 100 * time.Millisecond
)

// fileNames are tried in order inside the config directory.
var fileNames = []string{"config.yaml", "config.yml", "config.json"}

// Config is the effective configuration.
type Config struct {
	// DefaultPath is the environment directory created when no path
	// argument is given.
	DefaultPath string `mapstructure:"default_path" yaml:"default_path"`

	// Candidates are the environment directory names searched by
	// discovery, in priority order.
	Candidates []string `mapstructure:"candidates" yaml:"candidates"`

	// Interpreters are the executable names probed for a Python
	// interpreter, in priority order.
	Interpreters []string `mapstructure:"interpreters" yaml:"interpreters"`

	// ProbeTimeout bounds each "--version" probe.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`

	// RequirementsFiles are the requirements file names, in priority order.
	RequirementsFiles []string `mapstructure:"requirements_files" yaml:"requirements_files"`

	// HelperScript is where "activate" writes its helper on POSIX.
	HelperScript string `mapstructure:"helper_script" yaml:"helper_script"`

	// LinkName is the name of the self-install symlink.
	LinkName string `mapstructure:"link_name" yaml:"link_name"`

	// BinDirs are the self-install destination candidates.
	BinDirs []string `mapstructure:"bin_dirs" yaml:"bin_dirs"`

	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`

	// Sources lists the files that contributed values, lowest priority
	// first. It is informational and never read from a file.
	Sources []string `mapstructure:"-" yaml:"-"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultPath:       model.DefaultEnvPath,
		Candidates:        append([]string(nil), model.DefaultCandidates...),
		Interpreters:      append([]string(nil), model.DefaultInterpreters...),
		ProbeTimeout:      interpreter.DefaultProbeTimeout,
		RequirementsFiles: append([]string(nil), model.DefaultRequirementsFiles...),
		HelperScript:      venv.DefaultHelperScript,
		LinkName:          selfinstall.DefaultLinkName,
		BinDirs:           append([]string(nil), selfinstall.DefaultBinDirs...),
	}
}

// Dir returns the qvenv configuration directory of the running process.
func Dir() (string, error) {
	return DirFor(runtime.GOOS, os.Getenv)
}

// DirFor returns the qvenv configuration directory for goos, reading
// variables through getenv: %APPDATA%\qvenv on Windows,
// ~/Library/Application Support/qvenv on macOS and
// $XDG_CONFIG_HOME/qvenv (default ~/.config/qvenv) elsewhere.
func DirFor(goos string, getenv func(string) string) (string, error) {
	var base string
	switch goos {
	case platform.Windows:
		base = getenv("APPDATA")
		if base == "" {
			profile := getenv("USERPROFILE")
			if profile == "" {
				return "", errors.New("neither APPDATA nor USERPROFILE is set")
			}
			base = filepath.Join(profile, "AppData", "Roaming")
		}
	case platform.Darwin:
		home := getenv("HOME")
		if home == "" {
			return "", errors.New("failed to get home directory: $HOME is not defined")
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = getenv("XDG_CONFIG_HOME")
		if base == "" {
			home := getenv("HOME")
			if home == "" {
				return "", errors.New("failed to get home directory: $HOME is not defined")
			}
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, AppName), nil
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// WorkDir is searched for pyproject.toml. Empty skips it.
	WorkDir string

	// ConfigFile, when set, replaces the config directory lookup and
	// must exist.
	ConfigFile string

	// ConfigDir overrides Dir().
	ConfigDir string

	// Getenv looks up QVENV_* overrides and the variables Dir reads.
	// Nil uses os.Getenv.
	Getenv func(string) string

	// GOOS selects the config directory convention. Empty uses
	// runtime.GOOS.
	GOOS string
}

// Load resolves the configuration layers described in the package
// documentation. A missing user config file or pyproject.toml is not an
// error; a missing explicit ConfigFile is.
func Load(opts LoadOptions) (*Config, error) {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("default_path", defaults.DefaultPath)
	v.SetDefault("candidates", defaults.Candidates)
	v.SetDefault("interpreters", defaults.Interpreters)
	v.SetDefault("probe_timeout", defaults.ProbeTimeout)
	v.SetDefault("requirements_files", defaults.RequirementsFiles)
	v.SetDefault("helper_script", defaults.HelperScript)
	v.SetDefault("link_name", defaults.LinkName)
	v.SetDefault("bin_dirs", defaults.BinDirs)
	v.SetDefault("verbose", defaults.Verbose)

	var sources []string

	userFile, err := resolveUserFile(opts)
	if err != nil {
		return nil, err
	}
	if userFile != "" {
		if err := mergeFile(v, userFile); err != nil {
			return nil, model.WrapCLIError(model.KindInvalidInput, "failed to load config file "+userFile, err)
		}
		sources = append(sources, userFile)
	}

	if opts.WorkDir != "" {
		pyproject := filepath.Join(opts.WorkDir, PyprojectFile)
		found, err := mergePyproject(v, pyproject)
		if err != nil {
			return nil, model.WrapCLIError(model.KindInvalidInput, "failed to load "+pyproject, err)
		}
		if found {
			sources = append(sources, pyproject)
		}
	}

	// Environment overrides are bound per known key so the lookup can be
	// swapped out. Empty values count as unset.
	for _, key := range v.AllKeys() {
		if val := opts.Getenv(EnvKey(key)); val != "" {
			v.Set(key, val)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, model.WrapCLIError(model.KindInvalidInput, "failed to parse config", err)
	}
	cfg.Sources = sources

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.DefaultPath) == "" {
		problems = append(problems, "default_path must not be empty")
	}
	if len(c.Candidates) == 0 {
		problems = append(problems, "candidates must list at least one directory name")
	}
	if len(c.Interpreters) == 0 {
		problems = append(problems, "interpreters must list at least one executable")
	}
	switch {
	case c.ProbeTimeout <= 0:
		problems = append(problems, "probe_timeout must be positive")
	case c.ProbeTimeout < MinTimeout:
		problems = append(problems, fmt.Sprintf(
			"probe_timeout %s is shorter than %s; use a duration such as \"5s\"", c.ProbeTimeout, MinTimeout))
	}
	if len(c.RequirementsFiles) == 0 {
		problems = append(problems, "requirements_files must list at least one file name")
	}
	if c.HelperScript == "" {
		problems = append(problems, "helper_script must not be empty")
	}
	if c.LinkName == "" || strings.ContainsAny(c.LinkName, `/\`) {
		problems = append(problems, "link_name must be a plain file name")
	}
	if len(c.BinDirs) == 0 {
		problems = append(problems, "bin_dirs must list at least one directory")
	}
	if len(problems) == 0 {
		return nil
	}

	err := model.NewCLIError(model.KindInvalidInput, "invalid configuration")
	for _, p := range problems {
		err.WithHint("%s", p)
	}
	return err
}

// EnvKey returns the environment variable that overrides key, for example
// QVENV_PROBE_TIMEOUT for probe_timeout.
func EnvKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

var durationType = reflect.TypeFor[time.Duration]()

// secondsHook decodes bare numbers into durations as seconds. Strings with a
// unit and values that already are durations pass through unchanged.
func secondsHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType || from == durationType {
		return data, nil
	}
	val := reflect.ValueOf(data)
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Duration(val.Int()) * time.Second, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return time.Duration(val.Uint()) * time.Second, nil
	case reflect.Float32, reflect.Float64:
		return time.Duration(val.Float() * float64(time.Second)), nil
	case reflect.String:
		if n, err := strconv.ParseFloat(strings.TrimSpace(val.String()), 64); err == nil {
			return time.Duration(n * float64(time.Second)), nil
		}
	}
	return data, nil
}

// resolveUserFile returns the config file to read, or "" when there is
// none.
func resolveUserFile(opts LoadOptions) (string, error) {
	if opts.ConfigFile != "" {
		if !fileExists(opts.ConfigFile) {
			return "", model.NewCLIError(model.KindInvalidInput, "config file not found: "+opts.ConfigFile).
				WithHint("Check the --config path")
		}
		return opts.ConfigFile, nil
	}

	dir := opts.ConfigDir
	if dir == "" {
		var err error
		if dir, err = DirFor(opts.GOOS, opts.Getenv); err != nil {
			// No home directory means no user config, not a failure.
			return "", nil
		}
	}
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path, nil
		}
	}
	return "", nil
}

// mergeFile merges a YAML or JSON file into v. JSON is cleaned with jsonc
// first so comments and trailing commas are accepted.
func mergeFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		v.SetConfigType("json")
		data = jsonc.ToJSON(data)
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	default:
		return fmt.Errorf("unsupported config format %q (use .yaml, .yml or .json)", filepath.Ext(path))
	}
	return v.MergeConfig(bytes.NewReader(data))
}

// pyproject is the subset of pyproject.toml qvenv reads.
type pyproject struct {
	Tool struct {
		Qvenv map[string]any `toml:"qvenv"`
	} `toml:"tool"`
}

// mergePyproject merges the [tool.qvenv] table of path into v. It reports
// whether the table was present. Keys may use dashes ("link-name") as is
// common in pyproject.toml.
func mergePyproject(v *viper.Viper, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var doc pyproject
	if err := toml.Unmarshal(data, &doc); err != nil {
		return false, err
	}
	if len(doc.Tool.Qvenv) == 0 {
		return false, nil
	}

	table := make(map[string]any, len(doc.Tool.Qvenv))
	for k, val := range doc.Tool.Qvenv {
		table[strings.ReplaceAll(k, "-", "_")] = val
	}
	if err := v.MergeConfigMap(table); err != nil {
		return false, err
	}
	return true, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

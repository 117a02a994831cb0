// Package config handles loading and resolution of the runstack
// configuration file.
//
// The configuration file (runstack.jsonc) supports JSONC (JSON with
// Comments), so this package uses github.com/tidwall/jsonc to strip
// comments before parsing with the standard encoding/json library.
//
// Key responsibilities:
//   - Load and parse runstack.jsonc (with JSONC support)
//   - Fill in built-in defaults for every omitted field
//   - Apply environment variable overrides (RUNSTACK_PORT, PORT)
//   - Validate the resolved configuration (port range, non-empty commands)
//
// Resolution precedence, highest first: command-line flag (applied by
// the cli layer) > environment > config file > built-in default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/devinda0/runstack/internal/model"
)

// DefaultFileName is the config file probed in the working directory
// when no explicit path is given via flag or RUNSTACK_CONFIG.
const DefaultFileName = "runstack.jsonc"

// Environment variable names recognized by the loader.
const (
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "RUNSTACK_CONFIG"

	// EnvPort overrides the service port. Takes precedence over EnvPortPlain.
	EnvPort = "RUNSTACK_PORT"

	// EnvPortPlain is the conventional PORT variable set by most
	// container orchestrators. Honored when EnvPort is unset.
	EnvPortPlain = "PORT"
)

// Config is the fully resolved runstack configuration. Every field is
// guaranteed non-zero after Load: omitted file fields are filled from
// the built-in defaults, which mirror the orchestrated backend's
// conventional toolchain.
type Config struct {
	// Project is the human-readable project name, used for image
	// tagging and log output.
	Project string `json:"project"`

	// AppDir is the application source directory that lint/format
	// operate on and the image build copies.
	AppDir string `json:"appDir"`

	// Port is the network port the service process binds.
	Port int `json:"port"`

	// Manifest is the pinned-dependency listing consumed by install
	// and produced by freeze.
	Manifest string `json:"manifest"`

	// VenvDir is the isolated dependency environment directory created
	// by the venv verb.
	VenvDir string `json:"venvDir"`

	// Service configures how the service process is launched.
	Service ServiceConfig `json:"service"`

	// Agent configures how the agent process is launched.
	Agent AgentConfig `json:"agent"`

	// Tools maps the remaining runner verbs to their underlying
	// tool command lines.
	Tools ToolsConfig `json:"tools"`

	// CleanPatterns lists directory names and file globs removed by
	// the clean verb. Each removal is best-effort.
	CleanPatterns []string `json:"cleanPatterns"`

	// Readiness configures the combined-launch readiness handshake.
	Readiness ReadinessConfig `json:"readiness"`

	// Image configures container image packaging.
	Image ImageConfig `json:"image"`
}

// ServiceConfig describes the service process command line.
//
// The launcher composes the final argv as:
//
//	Command... PortFlag <port> [ReloadFlag]
//
// with ReloadFlag appended only for the dev (auto-reload) variant.
type ServiceConfig struct {
	// Command is the base command line (binary plus fixed arguments).
	Command []string `json:"command"`

	// PortFlag is the option name that carries the port value.
	PortFlag string `json:"portFlag"`

	// ReloadFlag enables auto-reload when appended. Empty disables
	// the dev variant's reload behavior entirely.
	ReloadFlag string `json:"reloadFlag"`
}

// AgentConfig describes the agent process command line. The agent
// program exposes its own subcommands (dev, start, download-files),
// which the runner appends to Command.
type AgentConfig struct {
	// Command is the base command line for the agent program.
	Command []string `json:"command"`
}

// ToolsConfig maps runner verbs to external tool invocations.
// Single-invocation verbs hold one command line; lint and format are
// fixed two-tool sequences executed in order with stop-on-first-failure.
type ToolsConfig struct {
	// Install is the dependency installer. The manifest path is
	// appended as the final argument.
	Install []string `json:"install"`

	// Test is the test runner, invoked verbosely. An optional file
	// path argument is appended to scope the run.
	Test []string `json:"test"`

	// Lint is the static-analysis sequence (exactly the configured
	// command lines, run in order over AppDir).
	Lint [][]string `json:"lint"`

	// Format is the source-formatting sequence, run in order over AppDir.
	Format [][]string `json:"format"`

	// Freeze captures resolved dependency versions on stdout; the
	// runner redirects that output into the manifest file.
	Freeze []string `json:"freeze"`

	// Venv creates the isolated environment. VenvDir is appended as
	// the final argument.
	Venv []string `json:"venv"`
}

// ReadinessConfig tunes the combined-launch readiness handshake: a TCP
// probe against the service port, retried with a fixed interval until
// the timeout elapses.
type ReadinessConfig struct {
	// TimeoutSeconds is the total time budget for the handshake.
	TimeoutSeconds int `json:"timeoutSeconds"`

	// IntervalMillis is the delay between consecutive probes.
	IntervalMillis int `json:"intervalMillis"`
}

// Timeout returns the handshake time budget as a duration.
func (r ReadinessConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Interval returns the probe interval as a duration.
func (r ReadinessConfig) Interval() time.Duration {
	return time.Duration(r.IntervalMillis) * time.Millisecond
}

// ImageConfig configures container image packaging.
type ImageConfig struct {
	// Name is the image repository name.
	Name string `json:"name"`

	// Tag is the image tag.
	Tag string `json:"tag"`

	// BaseImage is the base runtime image for the generated Dockerfile.
	BaseImage string `json:"baseImage"`

	// Workdir is the working directory inside the image.
	Workdir string `json:"workdir"`
}

// Ref returns the full image reference ("name:tag").
func (i ImageConfig) Ref() string {
	return i.Name + ":" + i.Tag
}

// Default returns the built-in configuration. The defaults mirror the
// orchestrated backend's toolchain: a uvicorn-served application tree
// under app/, pip with a requirements.txt manifest, pytest, ruff+mypy
// for lint, black+isort for format, and the standard Python cache
// directories for clean.
func Default() *Config {
	return &Config{
		Project:  "clevermock-backend",
		AppDir:   "app",
		Port:     model.DefaultServicePort,
		Manifest: "requirements.txt",
		VenvDir:  ".venv",
		Service: ServiceConfig{
			Command:    []string{"uvicorn", "app.main:app", "--host", "0.0.0.0"},
			PortFlag:   "--port",
			ReloadFlag: "--reload",
		},
		Agent: AgentConfig{
			Command: []string{"python", "-m", "app.agent"},
		},
		Tools: ToolsConfig{
			Install: []string{"pip", "install", "-r"},
			Test:    []string{"pytest", "-v"},
			Lint: [][]string{
				{"ruff", "check"},
				{"mypy"},
			},
			Format: [][]string{
				{"black"},
				{"isort"},
			},
			Freeze: []string{"pip", "freeze"},
			Venv:   []string{"python", "-m", "venv"},
		},
		CleanPatterns: []string{
			"__pycache__",
			".pytest_cache",
			".mypy_cache",
			".ruff_cache",
			"*.pyc",
		},
		Readiness: ReadinessConfig{
			TimeoutSeconds: 30,
			IntervalMillis: 250,
		},
		Image: ImageConfig{
			Name:      "clevermock-backend",
			Tag:       "latest",
			BaseImage: "python:3.12-slim",
			Workdir:   "/srv/app",
		},
	}
}

// Load resolves the configuration from the given file path.
//
// Path resolution:
//  1. If path is non-empty (from --config), the file MUST exist.
//  2. Otherwise, RUNSTACK_CONFIG is consulted; if set, the file MUST exist.
//  3. Otherwise, DefaultFileName in the working directory is probed;
//     if absent, the built-in defaults are used as-is.
//
// After file parsing, environment overrides are applied and the result
// is validated. Returns a model.CLIError with ExitConfigError on any
// failure.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		if envPath := os.Getenv(EnvConfigPath); envPath != "" {
			path = envPath
			explicit = true
		} else {
			path = DefaultFileName
		}
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			// No config file is a supported setup — the defaults
			// describe a complete orchestration on their own.
			return finalize(cfg)
		}
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("cannot read config file %q", path), err)
	}

	// jsonc.ToJSON strips comments and trailing commas, producing
	// strict JSON that encoding/json can parse. Unknown fields are
	// silently ignored, matching the loader's forward-compatibility
	// stance.
	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid config file %q", path), err)
	}

	return finalize(cfg)
}

// finalize applies environment overrides and validates the config.
func finalize(cfg *Config) (*Config, error) {
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides mutates cfg with values from the environment.
// RUNSTACK_PORT wins over PORT; both must parse as integers.
func applyEnvOverrides(cfg *Config) error {
	for _, name := range []string{EnvPort, EnvPortPlain} {
		raw := os.Getenv(name)
		if raw == "" {
			continue
		}
		port, err := strconv.Atoi(raw)
		if err != nil {
			return model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("invalid %s value %q", name, raw), err)
		}
		cfg.Port = port
		return nil
	}
	return nil
}

// Validate checks the resolved configuration for internal consistency.
// It verifies the port range and that every command line has at least
// a binary name.
func (c *Config) Validate() error {
	if err := model.ValidatePort(c.Port); err != nil {
		return model.WrapCLIError(model.ExitConfigError, "invalid service port", err)
	}
	if len(c.Service.Command) == 0 {
		return model.NewCLIError(model.ExitConfigError, "service command must not be empty")
	}
	if len(c.Agent.Command) == 0 {
		return model.NewCLIError(model.ExitConfigError, "agent command must not be empty")
	}
	if len(c.Tools.Install) == 0 {
		return model.NewCLIError(model.ExitConfigError, "install command must not be empty")
	}
	if len(c.Tools.Test) == 0 {
		return model.NewCLIError(model.ExitConfigError, "test command must not be empty")
	}
	if len(c.Tools.Freeze) == 0 {
		return model.NewCLIError(model.ExitConfigError, "freeze command must not be empty")
	}
	if len(c.Tools.Venv) == 0 {
		return model.NewCLIError(model.ExitConfigError, "venv command must not be empty")
	}
	for i, step := range c.Tools.Lint {
		if len(step) == 0 {
			return model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("lint step %d must not be empty", i+1))
		}
	}
	for i, step := range c.Tools.Format {
		if len(step) == 0 {
			return model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("format step %d must not be empty", i+1))
		}
	}
	if c.Readiness.TimeoutSeconds <= 0 {
		return model.NewCLIError(model.ExitConfigError, "readiness timeout must be positive")
	}
	if c.Readiness.IntervalMillis <= 0 {
		return model.NewCLIError(model.ExitConfigError, "readiness interval must be positive")
	}
	return nil
}

// ServiceArgs composes the full service process argv for the given
// port, with auto-reload appended when reload is true and a reload
// flag is configured.
func (c *Config) ServiceArgs(port int, reload bool) []string {
	args := make([]string, 0, len(c.Service.Command)+3)
	args = append(args, c.Service.Command...)
	if c.Service.PortFlag != "" {
		args = append(args, c.Service.PortFlag, strconv.Itoa(port))
	}
	if reload && c.Service.ReloadFlag != "" {
		args = append(args, c.Service.ReloadFlag)
	}
	return args
}

// AgentArgs composes the full agent process argv for the given agent
// subcommand ("dev", "start", or "download-files").
func (c *Config) AgentArgs(subcommand string) []string {
	args := make([]string, 0, len(c.Agent.Command)+1)
	args = append(args, c.Agent.Command...)
	args = append(args, subcommand)
	return args
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk compositor configuration, read from
// <configdir>/grefsen.yaml. Everything has a sensible default; the file and
// every key in it are optional. Command-line flags win over file values.
type Config struct {
	// LogFile redirects diagnostic output when set.
	LogFile string `yaml:"log_file"`

	// Screens restricts output to the named screens, case-insensitively.
	Screens []string `yaml:"screens"`

	// Windowed shows windows at their natural size instead of fullscreen.
	Windowed bool `yaml:"windowed"`

	// Scene is the manifest file name inside the config directory.
	Scene string `yaml:"scene"`

	// Env holds environment defaults for the compositor process itself,
	// applied only when the variable is not already set.
	Env map[string]string `yaml:"env"`

	// ClientEnv is seeded into every launched client, same only-if-unset
	// rule.
	ClientEnv map[string]string `yaml:"client_env"`

	// Autostart lists client command lines launched once the windows are
	// up.
	Autostart []string `yaml:"autostart"`
}

// DefaultDir returns the user-scoped config directory, ~/.config/grefsen.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "grefsen"), nil
}

// DefaultConfig returns the built-in defaults. The env defaults mirror what
// the compositor has always seeded: EGL integration for nested runs, no
// client-side decorations, and Wayland as the platform for clients.
func DefaultConfig() *Config {
	return &Config{
		Scene: "scene.yaml",
		Env: map[string]string{
			"QT_XCB_GL_INTEGRATION":               "xcb_egl",
			"QT_WAYLAND_DISABLE_WINDOWDECORATION": "1",
		},
		ClientEnv: map[string]string{
			"QT_QPA_PLATFORM": "wayland",
		},
	}
}

// Load reads the config file from dir over the built-in defaults. A missing
// file just yields the defaults; a present but broken one is an error.
func Load(dir string) (*Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(dir, "grefsen.yaml")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Scene == "" {
		return errors.New("scene must not be empty")
	}
	if filepath.IsAbs(c.Scene) || filepath.Base(c.Scene) != c.Scene {
		return fmt.Errorf("scene %q must be a bare file name inside the config directory", c.Scene)
	}
	for key := range c.Env {
		if key == "" {
			return errors.New("env contains an empty variable name")
		}
	}
	for key := range c.ClientEnv {
		if key == "" {
			return errors.New("client_env contains an empty variable name")
		}
	}
	return nil
}

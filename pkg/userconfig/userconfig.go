// Package userconfig provides user-level configuration for wal.
// It is stored in ~/.config/wal/config.yaml and says how to reach the
// native helper and the target application.
package userconfig

import (
	"bytes"
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"

	"github.com/walassistant/wal/pkg/paths"
)

// CurrentVersion is the current version of the user config format
const CurrentVersion = "v1"

// DefaultProcess is the executable name of the target application.
const DefaultProcess = "Feishu.exe"

// Helper is the native helper process spawned by the CLI.
type Helper struct {
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// Target describes the application whose archives are patched.
type Target struct {
	// Process is the executable name the helper looks for.
	Process string `yaml:"process,omitempty"`
	// InstallDir overrides the install path reported by the helper.
	InstallDir string `yaml:"install_dir,omitempty"`
}

type Settings struct {
	// DebugLog is the default --log-file.
	DebugLog string `yaml:"debug_log,omitempty"`
	// LastTheme is the theme most recently applied or edited.
	LastTheme string `yaml:"last_theme,omitempty"`
}

// Config represents the user-level wal configuration
type Config struct {
	Version  string    `yaml:"version,omitempty"`
	Helper   *Helper   `yaml:"helper,omitempty"`
	Target   *Target   `yaml:"target,omitempty"`
	Settings *Settings `yaml:"settings,omitempty"`
}

// Keys lists the keys accepted by Get and Set.
var Keys = []string{
	"helper.command",
	"helper.args",
	"target.process",
	"target.install_dir",
	"settings.debug_log",
	"settings.last_theme",
}

// Path returns the path to the config file
func Path() string {
	return filepath.Join(paths.GetConfigDir(), "config.yaml")
}

// Load loads the user configuration. A missing file yields an empty config.
func Load() (*Config, error) {
	return loadFrom(Path())
}

func loadFrom(configPath string) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// Save saves the configuration to the config file
func (c *Config) Save() error {
	return c.saveTo(Path())
}

func (c *Config) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	c.Version = CurrentVersion

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return atomic.WriteFile(path, bytes.NewReader(data))
}

// GetHelper returns the helper settings, or an empty Helper if not set
func (c *Config) GetHelper() *Helper {
	if c.Helper == nil {
		return &Helper{}
	}
	return c.Helper
}

// GetTarget returns the target settings with defaults applied.
func (c *Config) GetTarget() Target {
	var t Target
	if c.Target != nil {
		t = *c.Target
	}
	t.Process = cmp.Or(t.Process, DefaultProcess)
	return t
}

// GetSettings returns the global settings, or an empty Settings if not set
func (c *Config) GetSettings() *Settings {
	if c.Settings == nil {
		return &Settings{}
	}
	return c.Settings
}

// Get returns the value of a dotted key. List values are joined with commas.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "helper.command":
		return c.GetHelper().Command, nil
	case "helper.args":
		return strings.Join(c.GetHelper().Args, ","), nil
	case "target.process":
		return c.GetTarget().Process, nil
	case "target.install_dir":
		return c.GetTarget().InstallDir, nil
	case "settings.debug_log":
		return c.GetSettings().DebugLog, nil
	case "settings.last_theme":
		return c.GetSettings().LastTheme, nil
	default:
		return "", unknownKey(key)
	}
}

// Set assigns a dotted key. helper.args takes a comma separated list; an
// empty value clears the key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "helper.command", "helper.args":
		if c.Helper == nil {
			c.Helper = &Helper{}
		}
		if key == "helper.command" {
			c.Helper.Command = value
		} else {
			c.Helper.Args = splitList(value)
		}
	case "target.process", "target.install_dir":
		if c.Target == nil {
			c.Target = &Target{}
		}
		if key == "target.process" {
			c.Target.Process = value
		} else {
			c.Target.InstallDir = value
		}
	case "settings.debug_log", "settings.last_theme":
		if c.Settings == nil {
			c.Settings = &Settings{}
		}
		if key == "settings.debug_log" {
			c.Settings.DebugLog = value
		} else {
			c.Settings.LastTheme = value
		}
	default:
		return unknownKey(key)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func unknownKey(key string) error {
	valid := slices.Clone(Keys)
	for i, k := range valid {
		valid[i] = strconv.Quote(k)
	}
	return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(valid, ", "))
}

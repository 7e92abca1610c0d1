package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates a setting outside its accepted values.
var ErrInvalidConfig = errors.New("invalid configuration")

// CredentialConfig controls where secrets may come from when a profile
// does not embed them.
type CredentialConfig struct {
	// Keyring enables lookups in the OS keyring for every target.
	// Profiles can opt in individually with credential_store = keyring.
	Keyring bool `yaml:"keyring,omitempty"`
	// Prompt allows interactive prompting as the last resort.
	Prompt bool `yaml:"prompt"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the logging level (debug, info, warn, error).
	Level string `yaml:"level,omitempty"`
	// JSON enables JSON-formatted logging.
	JSON bool `yaml:"json,omitempty"`
	// File is the path of the log file; stderr when empty.
	File string `yaml:"file,omitempty"`
	// MaxSize is the maximum log file size in MB before rotation.
	MaxSize int `yaml:"max_size,omitempty"`
}

// NotificationConfig holds settings for desktop notifications.
type NotificationConfig struct {
	// Enabled enables desktop notifications.
	Enabled bool `yaml:"enabled,omitempty"`
	// OnPrompt notifies when a run is waiting for a credential.
	OnPrompt bool `yaml:"on_prompt,omitempty"`
	// OnFailure notifies when a run fails.
	OnFailure bool `yaml:"on_failure,omitempty"`
}

// Config represents the shunctl configuration.
type Config struct {
	// ProfilesFile is the device profile store.
	ProfilesFile string `yaml:"profiles_file,omitempty"`
	// DefaultTarget is used when no target is given on the command line.
	DefaultTarget string `yaml:"default_target,omitempty"`
	// Credentials controls secret acquisition.
	Credentials CredentialConfig `yaml:"credentials"`
	// Log holds logging settings.
	Log LogConfig `yaml:"log,omitempty"`
	// Notifications holds notification settings.
	Notifications NotificationConfig `yaml:"notifications,omitempty"`

	// filePath is the path where this config was loaded from.
	filePath string `yaml:"-"`
}

// Default returns a new Config with default values.
func Default() *Config {
	paths := GetPaths()
	return &Config{
		ProfilesFile: paths.ProfilesFile,
		Credentials: CredentialConfig{
			Keyring: false,
			Prompt:  true,
		},
		Log: LogConfig{
			Level: "warn",
		},
		Notifications: NotificationConfig{
			Enabled:   false,
			OnPrompt:  true,
			OnFailure: true,
		},
		filePath: paths.ConfigFile,
	}
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	paths := GetPaths()
	return LoadFrom(paths.ConfigFile)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.filePath = path

	// #nosec G304 - path is the config file path (controlled, from user config directory)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.ProfilesFile == "" {
		cfg.ProfilesFile = GetPaths().ProfilesFile
	}
	cfg.ProfilesFile = ExpandHome(cfg.ProfilesFile)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv applies SHUNCTL_PROFILES and SHUNCTL_TARGET overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvProfiles); v != "" {
		c.ProfilesFile = ExpandHome(v)
	}
	if v := os.Getenv(EnvTarget); v != "" {
		c.DefaultTarget = v
	}
}

// Validate checks settings that have a closed set of values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level %q must be one of debug, info, warn, error", ErrInvalidConfig, c.Log.Level)
	}
	if c.Log.MaxSize < 0 {
		return fmt.Errorf("%w: log.max_size must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Save writes the configuration to its file path.
func (c *Config) Save() error {
	if c.filePath == "" {
		return errors.New("config file path not set")
	}

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FilePath returns the path where this config was loaded from.
func (c *Config) FilePath() string {
	return c.filePath
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

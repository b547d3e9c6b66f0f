// Package config holds cliner's configuration, loaded through viper from
// flags, CLINER_* environment variables and an optional config.yaml.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the effective cliner configuration.
type Config struct {
	BaseDir     string      `yaml:"base_dir" mapstructure:"base_dir"`         // directory holding modes/ and rules/
	ModesOutput string      `yaml:"modes_output" mapstructure:"modes_output"` // aggregated modes artifact
	RulesOutput string      `yaml:"rules_output" mapstructure:"rules_output"` // concatenated rules artifact
	Exclude     []string    `yaml:"exclude" mapstructure:"exclude"`           // doublestar patterns matched against entry names
	GlobalDirs  []string    `yaml:"global_dirs" mapstructure:"global_dirs"`   // init copy sources, in precedence order
	Watch       WatchConfig `yaml:"watch" mapstructure:"watch"`
	LogLevel    string      `yaml:"log_level" mapstructure:"log_level"`
	LogFormat   string      `yaml:"log_format" mapstructure:"log_format"`
}

// WatchConfig configures `cliner generate --watch`.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with the standard layout.
func Default() *Config {
	return &Config{
		BaseDir:     ".cline",
		ModesOutput: ".roomodes",
		RulesOutput: ".clinerules",
		Exclude:     []string{},
		GlobalDirs:  DefaultGlobalDirs(),
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		LogLevel:  "info",
		LogFormat: "fmt",
	}
}

// DefaultGlobalDirs lists the user-level directories `cliner init` copies
// modes and rules from: $XDG_CONFIG_HOME/cliner (or ~/.config/cliner), then
// ~/.cline.
func DefaultGlobalDirs() []string {
	var dirs []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "cliner"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return dirs
	}
	if os.Getenv("XDG_CONFIG_HOME") == "" {
		dirs = append(dirs, filepath.Join(homeDir, ".config", "cliner"))
	}
	dirs = append(dirs, filepath.Join(homeDir, ".cline"))

	return dirs
}

// SetDefaults registers the defaults with v so unset keys resolve.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("base_dir", d.BaseDir)
	v.SetDefault("modes_output", d.ModesOutput)
	v.SetDefault("rules_output", d.RulesOutput)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("global_dirs", d.GlobalDirs)
	v.SetDefault("watch.debounce_ms", d.Watch.DebounceMs)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
}

// Load decodes the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot use.
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return errors.New("base_dir must not be empty")
	}
	if c.ModesOutput == "" || c.RulesOutput == "" {
		return errors.New("modes_output and rules_output must not be empty")
	}
	if c.Watch.DebounceMs < 0 {
		return errors.Errorf("watch.debounce_ms cannot be negative: %d", c.Watch.DebounceMs)
	}
	switch c.LogFormat {
	case "fmt", "text", "json":
	default:
		return errors.Errorf("invalid log_format %q, must be one of: fmt, text, json", c.LogFormat)
	}
	return nil
}

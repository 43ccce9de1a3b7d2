// Package config loads citeweave's defaults for --scope, --format, and
// the session-cache directory from a .citeweave.yaml file and
// CITEWEAVE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is citeweave's complete runtime configuration.
type Config struct {
	Scope        ScopeConfig        `mapstructure:"scope" yaml:"scope"`
	Output       OutputConfig       `mapstructure:"output" yaml:"output"`
	SessionCache SessionCacheConfig `mapstructure:"session_cache" yaml:"session_cache"`
}

// ScopeConfig controls the default directory tree the File Resolver
// searches and its ignore patterns.
type ScopeConfig struct {
	Default        string   `mapstructure:"default" yaml:"default"`
	IgnorePatterns []string `mapstructure:"ignore_patterns" yaml:"ignore_patterns"`
}

// OutputConfig controls default CLI presentation.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // json|text
}

// SessionCacheConfig controls where the external session-marker cache lives.
type SessionCacheConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// DefaultConfig returns a Config with citeweave's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Scope: ScopeConfig{
			Default:        ".",
			IgnorePatterns: []string{".git/*", "node_modules/*"},
		},
		Output: OutputConfig{
			Format: "json",
		},
		SessionCache: SessionCacheConfig{
			Directory: "~/.citeweave/sessions",
		},
	}
}

// Loader loads a Config from the layered search paths: cwd, the user's
// home directory, then /etc/citeweave.
type Loader struct {
	searchPaths []string
}

func NewLoader() *Loader {
	return &Loader{searchPaths: []string{".", "~", "/etc/citeweave"}}
}

// Load reads .citeweave.yaml (if present) and CITEWEAVE_* env vars,
// layering them over DefaultConfig.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()
	cfg := DefaultConfig()

	v.SetConfigName(".citeweave")
	v.SetConfigType("yaml")
	for _, p := range l.searchPaths {
		v.AddConfigPath(l.expandPath(p))
	}

	v.SetEnvPrefix("CITEWEAVE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := l.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Scope.Default = l.expandPath(cfg.Scope.Default)
	cfg.SessionCache.Directory = l.expandPath(cfg.SessionCache.Directory)

	return cfg, nil
}

// LoadFromPath reads a config file at an explicit path instead of
// searching the layered search paths, layering it over DefaultConfig.
func (l *Loader) LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	cfg := DefaultConfig()

	v.SetConfigFile(path)
	v.SetEnvPrefix("CITEWEAVE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := l.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Scope.Default = l.expandPath(cfg.Scope.Default)
	cfg.SessionCache.Directory = l.expandPath(cfg.SessionCache.Directory)

	return cfg, nil
}

// Validate performs basic sanity checks on a loaded Config.
func (l *Loader) Validate(cfg *Config) error {
	if cfg.Scope.Default == "" {
		return fmt.Errorf("scope.default cannot be empty")
	}
	switch cfg.Output.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid output.format: %s", cfg.Output.Format)
	}
	return nil
}

// expandPath expands a leading ~ to the user's home directory and
// resolves the result to an absolute path.
func (l *Loader) expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

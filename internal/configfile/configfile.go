// Package configfile loads application settings from the sigweave home
// directory (~/.sigweave by default, overridable via SIGWEAVE_HOME).
//
// Settings resolve in the usual order: environment variables beat config.yaml,
// config.yaml beats built-in defaults. A missing config file is not an error.
package configfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	// HomeDir is the sigweave data directory.
	HomeDir string
	// DBPath is the SQLite database location.
	DBPath string `mapstructure:"db"`
	// LogDir holds application and import warning logs.
	LogDir string `mapstructure:"log-dir"`
	// FavoritesPath is the favorites JSON file.
	FavoritesPath string `mapstructure:"favorites"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log-level"`
}

// HomeDir resolves the sigweave data directory.
func HomeDir() (string, error) {
	if dir := os.Getenv("SIGWEAVE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".sigweave"), nil
}

// Load reads config.yaml from the sigweave home directory and applies
// defaults and environment overrides.
func Load() (*Config, error) {
	dir, err := HomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom reads configuration rooted at the given data directory.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(filepath.Join(dir, "config.yaml"))

	v.SetDefault("db", filepath.Join(dir, "sigweave.db"))
	v.SetDefault("log-dir", filepath.Join(dir, "logs"))
	v.SetDefault("favorites", filepath.Join(dir, "favorites.json"))
	v.SetDefault("log-level", "info")

	v.SetEnvPrefix("SIGWEAVE")
	_ = v.BindEnv("db", "SIGWEAVE_DB")
	_ = v.BindEnv("log-dir", "SIGWEAVE_LOG_DIR")
	_ = v.BindEnv("log-level", "SIGWEAVE_LOG_LEVEL")

	// A missing config file just means defaults; anything else (bad YAML,
	// permission problems) should surface.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	}

	cfg := &Config{HomeDir: dir}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config.yaml: %w", err)
	}
	return cfg, nil
}

// EnsureDirs creates the data and log directories if needed.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.HomeDir, c.LogDir, filepath.Dir(c.DBPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

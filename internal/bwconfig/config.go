// Package bwconfig is the layered configuration collaborator: a viper
// singleton populated from, in ascending precedence, built-in defaults, a
// discovered YAML file, and environment variables.
package bwconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kantord/blogwarrior-go/internal/diag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix      = "BW"
	configDirName  = ".blogwarrior"
	configFileName = "config.yaml"
)

var v *viper.Viper

// Initialize sets up the configuration singleton. It should be called once
// at process startup, before any Get call.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	configFileSet := locateConfigFile(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("store-dir", "")
	v.SetDefault("feeds.shard-characters", 0)
	v.SetDefault("feeds.expected-capacity", 500)
	v.SetDefault("posts.shard-characters", 2)
	v.SetDefault("posts.expected-capacity", 50000)

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
		diag.Logf("loaded config from %s", v.ConfigFileUsed())
	} else {
		diag.Logf("no %s found; using defaults and environment variables", configFileName)
	}

	return nil
}

// locateConfigFile walks up from the current directory looking for
// .blogwarrior/config.yaml, falling back to the user's home directory. It
// returns whether a file was found and, if so, sets it on v.
func locateConfigFile(v *viper.Viper) bool {
	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; ; {
			candidate := filepath.Join(dir, configDirName, configFileName)
			if _, err := os.Stat(candidate); err == nil {
				v.SetConfigFile(candidate)
				return true
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, configDirName, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			v.SetConfigFile(candidate)
			return true
		}
	}

	return false
}

// StoreDir resolves the store directory: the
// RSS_STORE environment variable if set, otherwise the configured
// store-dir, otherwise blogwarrior/store under the user configuration
// directory (os.UserConfigDir). A separate platform data directory (such as
// XDG_DATA_HOME) is not consulted.
func StoreDir() (string, error) {
	if env := os.Getenv("RSS_STORE"); env != "" {
		return env, nil
	}
	if v != nil {
		if configured := v.GetString("store-dir"); configured != "" {
			return configured, nil
		}
	}
	dataDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving default store directory: %w", err)
	}
	return filepath.Join(dataDir, "blogwarrior", "store"), nil
}

// DefaultConfigPath returns the location `config init` writes to:
// .blogwarrior/config.yaml under the user's home directory.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// WriteDefaultConfig writes a starter config file at path carrying every
// tunable at its default value, so an operator edits key names rather than
// guessing them. It refuses to overwrite an existing file.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	defaults := map[string]any{
		"store-dir": "",
		"feeds": map[string]any{
			"shard-characters":  0,
			"expected-capacity": 500,
		},
		"posts": map[string]any{
			"shard-characters":  2,
			"expected-capacity": 50000,
		},
	}
	data, err := yaml.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// GetString returns a configuration value, or "" if Initialize was never
// called.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetInt returns a configuration value, or 0 if Initialize was never
// called.
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

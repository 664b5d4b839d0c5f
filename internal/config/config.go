// Package config layers the application's configuration: a project-local
// file, an XDG config directory, the user's home directory, and
// BRUIN_-prefixed environment overrides, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper singleton. It should be called once at
// startup, before any Get* function is used.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	configFileSet := false

	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; ; {
			candidate := filepath.Join(dir, ".bruin", "config.yaml")
			if _, statErr := os.Stat(candidate); statErr == nil {
				v.SetConfigFile(candidate)
				configFileSet = true
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if !configFileSet {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			candidate := filepath.Join(xdg, "bruin", "config.yaml")
			if _, err := os.Stat(candidate); err == nil {
				v.SetConfigFile(candidate)
				configFileSet = true
			}
		}
	}

	if !configFileSet {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, ".bruin", "config.yaml")
			if _, err := os.Stat(candidate); err == nil {
				v.SetConfigFile(candidate)
				configFileSet = true
			}
		}
	}

	v.SetEnvPrefix("BRUIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("vault", "")
	v.SetDefault("legacy-vault", "")
	v.SetDefault("control-dir", "")
	v.SetDefault("catalog-path", "")
	v.SetDefault("no-watcher", false)
	v.SetDefault("actor", "")
	v.SetDefault("sync.tick-interval", "200ms")
	v.SetDefault("sync.debounce-after", "500ms")
	v.SetDefault("sync.max-retries", 3)
	v.SetDefault("graph.depth-limit", 3)
	v.SetDefault("graph.node-cap", 200)
	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.max-retries", 3)
	v.SetDefault("log.dir", "")
	v.SetDefault("log.max-size-mb", 10)
	v.SetDefault("log.max-backups", 5)
	v.SetDefault("daemon.sweep-interval", "5m")
	v.SetDefault("daemon.log-path", "")

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	return nil
}

// GetString retrieves a string configuration value.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt retrieves an integer configuration value.
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration retrieves a duration configuration value.
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set overrides a configuration value at runtime (used by `bruin config
// set`); a value set this way wins over everything viper itself knows
// about for the rest of the process.
func Set(key string, value any) {
	if v != nil {
		v.Set(key, value)
	}
}

// WorkspaceOverrides is the optional, per-workspace `.bruin/workspace.toml`
// layer: small local overrides distinct from the main YAML config, for
// things a workspace wants to set without touching the shared config file.
type WorkspaceOverrides struct {
	DefaultState  string `toml:"default_state"`
	WebhookSecret string `toml:"webhook_secret_path"`
}

// LoadWorkspaceOverrides reads workspace.toml from dir if present. A
// missing file is not an error; it simply yields a zero-value result.
func LoadWorkspaceOverrides(dir string) (WorkspaceOverrides, error) {
	var w WorkspaceOverrides
	path := filepath.Join(dir, "workspace.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return w, nil
		}
		return w, fmt.Errorf("reading workspace overrides: %w", err)
	}
	if _, err := toml.Decode(string(data), &w); err != nil {
		return w, fmt.Errorf("parsing workspace overrides: %w", err)
	}
	return w, nil
}

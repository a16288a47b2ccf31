// Package config loads groceryd settings from defaults, an optional
// config file, and GROCERYD_* environment variables, in that order of
// increasing precedence. Command-line flags are layered on top by the
// CLI.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all groceryd settings.
type Config struct {
	// Port the HTTP server binds on (all interfaces).
	Port int `mapstructure:"port"`

	// DBPath is the SQLite store file.
	DBPath string `mapstructure:"db_path"`

	// LogFile, when set, tees logs into a rotating file.
	LogFile string `mapstructure:"log_file"`

	// UIDir, when set and present, is served at / instead of the
	// placeholder page.
	UIDir string `mapstructure:"ui_dir"`

	Backup BackupConfig `mapstructure:"backup"`
	Watch  WatchConfig  `mapstructure:"watch"`
}

// BackupConfig controls the startup snapshot sidecar.
type BackupConfig struct {
	// Dir is where snapshots are written.
	Dir string `mapstructure:"dir"`

	// Keep is the number of snapshots retained.
	Keep int `mapstructure:"keep"`

	// Interval re-snapshots periodically when > 0.
	Interval time.Duration `mapstructure:"interval"`
}

// WatchConfig controls the external-change watcher.
type WatchConfig struct {
	// Enabled turns on fsnotify watching of the store file.
	Enabled bool `mapstructure:"enabled"`

	// Debounce batches rapid file events before a refresh broadcast.
	Debounce time.Duration `mapstructure:"debounce"`
}

// Load reads configuration. cfgFile, when non-empty, must exist; when
// empty a groceryd.toml in the working directory is used if present.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 5000)
	v.SetDefault("db_path", "data/groceries.db")
	v.SetDefault("log_file", "")
	v.SetDefault("ui_dir", "")
	v.SetDefault("backup.dir", "data/backups")
	v.SetDefault("backup.keep", 5)
	v.SetDefault("backup.interval", time.Duration(0))
	v.SetDefault("watch.enabled", false)
	v.SetDefault("watch.debounce", 500*time.Millisecond)

	v.SetEnvPrefix("GROCERYD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("groceryd")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// Missing default config is fine; anything else is not.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db_path cannot be empty")
	}
	if cfg.Backup.Keep <= 0 {
		cfg.Backup.Keep = 5
	}

	return &cfg, nil
}

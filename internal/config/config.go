package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// DefaultFolders are the root folders synced when neither --all nor
// --folder is given. Matches the tablet's stock apps.
var DefaultFolders = []string{"Paper", "Daily", "Meeting", "Memo"}

// Config is the root of the optional ~/.viwoodsync.yaml file.
// Every field has a usable default; flags override file values.
type Config struct {
	Tablet TabletConfig `yaml:"tablet"`
	Sync   SyncConfig   `yaml:"sync"`
	System SystemConfig `yaml:"system"`
}

// TabletConfig describes how to reach the tablet's file service.
type TabletConfig struct {
	// Host may be set here so the positional IP argument can be omitted.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Timeout bounds listing and packaging calls, e.g. "10s".
	// Downloads are not bounded by it.
	Timeout string `yaml:"timeout"`
	// Parsed form of Timeout, not read from yaml.
	TimeoutDuration time.Duration `yaml:"-"`
}

// SyncConfig holds mirror-side settings.
type SyncConfig struct {
	Output string `yaml:"output"`
	// Folders replaces the default root-folder selection.
	Folders []string `yaml:"folders"`
}

// SystemConfig holds process-level settings.
type SystemConfig struct {
	// DBPath defaults to <output>/.viwoodsync.db when empty.
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Default returns a Config with every field set to its built-in default.
func Default() *Config {
	return &Config{
		Tablet: TabletConfig{
			Port:            8090,
			Timeout:         "10s",
			TimeoutDuration: 10 * time.Second,
		},
		Sync: SyncConfig{
			Output:  "./viwoods_sync",
			Folders: append([]string(nil), DefaultFolders...),
		},
		System: SystemConfig{
			LogLevel: "info",
		},
	}
}

// DefaultPath returns the default config file location in the user's home.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".viwoodsync.yaml"), nil
}

// Load reads and validates the config file at path. An empty path falls
// back to DefaultPath; a missing file there is not an error and yields
// the defaults, while an explicitly named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		defPath, err := DefaultPath()
		if err == nil {
			path = defPath
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// No config file is fine; run on defaults.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// Validate and normalize
	if cfg.Tablet.Port <= 0 || cfg.Tablet.Port > 65535 {
		return nil, fmt.Errorf("invalid tablet port: %d", cfg.Tablet.Port)
	}

	if cfg.Tablet.Timeout == "" {
		cfg.Tablet.Timeout = "10s"
	}
	duration, err := time.ParseDuration(cfg.Tablet.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid tablet timeout (tablet.timeout): %v", err)
	}
	cfg.Tablet.TimeoutDuration = duration

	if len(cfg.Sync.Folders) == 0 {
		cfg.Sync.Folders = append([]string(nil), DefaultFolders...)
	}

	if cfg.Sync.Output == "" {
		cfg.Sync.Output = "./viwoods_sync"
	}
	expanded, err := homedir.Expand(cfg.Sync.Output)
	if err != nil {
		return nil, fmt.Errorf("expand output dir: %w", err)
	}
	cfg.Sync.Output = expanded

	if cfg.System.LogLevel == "" {
		cfg.System.LogLevel = "info"
	}

	return cfg, nil
}

// DatabasePath resolves the sync cache location. It lives inside the
// mirror directory by default so wiping the mirror also wipes the state.
func (c *Config) DatabasePath() string {
	if c.System.DBPath != "" {
		return c.System.DBPath
	}
	return filepath.Join(c.Sync.Output, ".viwoodsync.db")
}

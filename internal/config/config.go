// Package config handles loading and saving application configuration.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// DataDir holds the database, lock file and log file.
	DataDir string `yaml:"data_dir,omitempty"`
	// DBPath defaults to <data_dir>/tasksrus.db
	DBPath    string `yaml:"db_path,omitempty"`
	StartView string `yaml:"start_view"`
	Theme     string `yaml:"theme,omitempty"`

	Persist PersistConfig `yaml:"persist"`
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
	Notify  NotifyConfig  `yaml:"notify"`
}

// PersistConfig controls how edits are written back.
type PersistConfig struct {
	// Debounce is the idle gap after the last keystroke before a write.
	Debounce time.Duration `yaml:"debounce"`
}

// StoreConfig bounds backend calls.
type StoreConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"` // defaults to <data_dir>/tasksrus.log
}

// NotifyConfig holds desktop notification settings.
type NotifyConfig struct {
	WriteFailures bool `yaml:"write_failures"`
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		StartView: "inbox",
		Persist:   PersistConfig{Debounce: 400 * time.Millisecond},
		Store:     StoreConfig{Timeout: 5 * time.Second},
		Log:       LogConfig{Level: "info"},
		Notify:    NotifyConfig{WriteFailures: true},
	}
}

// DefaultPath returns the default location of the config file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "tasksrus", "config.yaml"), nil
}

// DefaultDataDir returns the default data directory path
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tasksrus"
	}
	return filepath.Join(home, ".local", "share", "tasksrus")
}

// Load reads the configuration from path.
// If the file doesn't exist, returns a default configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.fill()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.fill()

	return cfg, nil
}

// Save writes the configuration to path atomically.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// fill derives paths and repairs values a hand-edited file may have zeroed.
func (c *Config) fill() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "tasksrus.db")
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.DataDir, "tasksrus.log")
	}
	if c.Persist.Debounce <= 0 {
		c.Persist.Debounce = DefaultConfig().Persist.Debounce
	}
	if c.Store.Timeout <= 0 {
		c.Store.Timeout = DefaultConfig().Store.Timeout
	}
	if c.StartView == "" {
		c.StartView = DefaultConfig().StartView
	}
}

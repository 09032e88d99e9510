package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	xdgAppName = "quacktask"
	configFile = "config.yaml"
	storeFile  = "quacktask.db"
)

// Config holds application configuration.
type Config struct {
	// DefaultList seeds the selected task list on first run. The live
	// selection lives in the store and wins once set.
	DefaultList string `yaml:"default_list"`
	// SyncSchedule is a cron expression for daemon mode.
	SyncSchedule string `yaml:"sync_schedule"`
	// Timezone overrides the system location for due-date parsing,
	// e.g. "America/New_York".
	Timezone string `yaml:"timezone"`
	// StorePath overrides the default cache database location.
	StorePath string `yaml:"store_path"`
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName, configFile), nil
}

// Load reads the config file, falling back to defaults when it does
// not exist. Environment variables override file values.
func Load() (*Config, error) {
	cfg := &Config{
		SyncSchedule: "*/30 * * * *",
	}

	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.loadFromEnv()
	if cfg.SyncSchedule == "" {
		cfg.SyncSchedule = "*/30 * * * *"
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("QUACKTASK_DEFAULT_LIST"); v != "" {
		c.DefaultList = v
	}
	if v := os.Getenv("QUACKTASK_SYNC_SCHEDULE"); v != "" {
		c.SyncSchedule = v
	}
	if v := os.Getenv("QUACKTASK_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("QUACKTASK_STORE"); v != "" {
		c.StorePath = v
	}
}

// StoreLocation resolves the cache database path, creating its parent
// directory.
func (c *Config) StoreLocation() (string, error) {
	path := c.StorePath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, ".local", "share", xdgAppName, storeFile)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return path, nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

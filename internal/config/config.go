// Package config loads imgx settings from YAML with environment overrides
// for publish credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Defaults struct {
		Format          string `yaml:"format"`
		Quality         int    `yaml:"quality"`
		OutputDir       string `yaml:"output_dir"`
		Concurrency     int    `yaml:"concurrency"`
		Recursive       bool   `yaml:"recursive"`
		MemoryPerItemMB int    `yaml:"memory_per_item_mb"`
	} `yaml:"defaults"`
	History struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"history"`
	Publish struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		User           string `yaml:"user"`
		KeyPath        string `yaml:"key_path"`
		KnownHosts     string `yaml:"known_hosts"`
		RemoteDir      string `yaml:"remote_dir"`
		Retries        int    `yaml:"retries"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"publish"`
}

// Default returns the configuration used when no file exists yet.
func Default() Config {
	var cfg Config
	cfg.Defaults.Format = "jpeg"
	cfg.Defaults.Quality = 85
	cfg.History.Enabled = true
	cfg.Publish.Port = 22
	cfg.Publish.Retries = 2
	cfg.Publish.TimeoutSeconds = 15
	return cfg
}

// DefaultPath resolves $XDG_CONFIG_HOME/imgx/config.yaml or
// ~/.config/imgx/config.yaml.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "imgx", "config.yaml")
}

// HistoryPath resolves where the run history database lives: the configured
// path, or $XDG_DATA_HOME/imgx/history.db.
func (c Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "imgx", "history.db")
}

// Load reads YAML configuration from path. An empty path resolves to
// DefaultPath; a missing file at the resolved default is not an error and
// yields Default(). Publish credentials from secrets.env and the
// environment override the file.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			applyOverrides(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyOverrides(&cfg)
	return cfg, nil
}

// applyOverrides merges secrets.env and process environment into the publish
// section, so remote credentials never have to live in the YAML file.
func applyOverrides(cfg *Config) {
	secrets, _ := LoadSecretsEnv("")
	for _, key := range []string{"IMGX_PUBLISH_HOST", "IMGX_PUBLISH_USER", "IMGX_PUBLISH_KEY"} {
		if v := os.Getenv(key); v != "" {
			secrets[key] = v
		}
	}
	if v := secrets["IMGX_PUBLISH_HOST"]; v != "" {
		cfg.Publish.Host = v
	}
	if v := secrets["IMGX_PUBLISH_USER"]; v != "" {
		cfg.Publish.User = v
	}
	if v := secrets["IMGX_PUBLISH_KEY"]; v != "" {
		cfg.Publish.KeyPath = v
	}
}

// WriteDefault writes the default configuration to path unless a file is
// already there. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return false, fmt.Errorf("mkdir config dir: %w", err)
	}
	out, err := yaml.Marshal(Default())
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

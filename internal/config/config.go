// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the on-disk configuration and merges it with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the persisted application configuration.
type Config struct {
	// AI: the OpenAI-compatible backend
	AI AIConfig `yaml:"ai"`

	// GitHub: optional token raises the unauthenticated rate limit
	GitHub GitHubConfig `yaml:"github"`

	// DataDir: where the cache database and logs live
	DataDir string `yaml:"data_dir"`
}

type AIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`              // e.g. gpt-4o-mini
	BaseURL string `yaml:"base_url,omitempty"` // empty means api.openai.com
}

type GitHubConfig struct {
	Token string `yaml:"token,omitempty"`
}

// DefaultPath returns ~/.reposage/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".reposage", "config.yaml"), nil
}

// Default returns the configuration written on first run.
func Default() Config {
	return Config{
		AI:      AIConfig{Model: "gpt-4o-mini"},
		DataDir: "", // resolved next to the config file when empty
	}
}

// Load reads the config at path, creating a default file when none
// exists, then applies environment overrides.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefault(path); err != nil {
			return Config{}, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read the config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	cfg.applyEnv()
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Dir(path)
	}
	return cfg, nil
}

// Save writes cfg back to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeDefault(path string) error {
	return Save(path, Default())
}

// applyEnv overlays environment variables on top of the file values.
// Environment always wins so CI and proxies can override without
// editing the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.AI.Model = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.AI.BaseURL = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("REPOSAGE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
}

// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the resolution service configuration.
//
// Configuration is read from an optional YAML file, then overridden by
// environment variables. A zero configuration is runnable: it serves on
// :8080 from ./data.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the resolution service configuration.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"listen_addr"`

	// DataDir is the store/registry data root.
	DataDir string `yaml:"data_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogDir enables file logging when set.
	LogDir string `yaml:"log_dir"`

	// Watch enables the filesystem invalidation watcher.
	Watch bool `yaml:"watch"`
}

// Default returns the runnable zero configuration.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		DataDir:    "data",
		LogLevel:   "info",
		Watch:      true,
	}
}

// Load reads configuration from path (optional) and the environment.
//
// A missing file is not an error when path is empty; a named file that
// does not exist is. Environment overrides: SCRIPTORIUM_LISTEN_ADDR,
// SCRIPTORIUM_DATA_DIR, SCRIPTORIUM_LOG_LEVEL, SCRIPTORIUM_LOG_DIR.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("SCRIPTORIUM_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("SCRIPTORIUM_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SCRIPTORIUM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SCRIPTORIUM_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	return cfg, nil
}

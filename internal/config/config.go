// Package config handles reading coderelay.yaml server configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for coderelay.yaml.
type Config struct {
	Listen             string      `yaml:"listen"`
	ClaudeBin          string      `yaml:"claude_bin"`
	WorkspaceRoot      string      `yaml:"workspace_root"`
	ExecTimeoutSeconds int         `yaml:"exec_timeout_seconds"` // 0 = no timeout
	Store              StoreConfig `yaml:"store"`
	LogPath            string      `yaml:"log_path"` // empty = stderr
}

// StoreConfig selects and parameterizes the session store backend.
type StoreConfig struct {
	Backend       string `yaml:"backend"` // "sqlite" | "redis" | "memory"
	SQLitePath    string `yaml:"sqlite_path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		Listen:             ":3000",
		ClaudeBin:          "claude",
		WorkspaceRoot:      "workspaces",
		ExecTimeoutSeconds: 0,
		Store: StoreConfig{
			Backend:    "sqlite",
			SQLitePath: "sessions.db",
		},
	}
}

// Read reads the config file at path.
// Returns an error if the file is not found or YAML is malformed.
func Read(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	return applyEnv(cfg), nil
}

// Load returns the config at path, or defaults when path is empty.
func Load(path string) (Config, error) {
	if path == "" {
		return applyEnv(Default()), nil
	}
	return Read(path)
}

// applyEnv applies environment overrides on top of file values.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("CODERELAY_LISTEN"); v != "" {
		cfg.Listen = v
	}
	return cfg
}

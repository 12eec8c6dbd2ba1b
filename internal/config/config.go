// Package config loads redlineserver's configuration: environment
// variables for the ambient HTTP concerns (port, timeouts, body size —
// carried over from the teacher's config.go), plus an optional YAML
// overlay for the engine's domain defaults (default author,
// redline/markdown toggles), exercising gopkg.in/yaml.v3 — declared in
// the teacher's go.mod but unused by its retrieved sources.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration loaded from environment
// variables and an optional YAML defaults file.
type Config struct {
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
	MaxRequestSizeMB int64

	Engine EngineDefaults
}

// EngineDefaults are the redline engine's per-deployment defaults,
// applied whenever a caller's request omits the corresponding field.
type EngineDefaults struct {
	Author           string `yaml:"author"`
	GenerateRedlines bool   `yaml:"generateRedlines"`
	StripMarkdown    bool   `yaml:"stripMarkdown"`
}

// Load reads configuration from environment variables with sensible
// defaults, then overlays cfg.Engine with defaultsPath's contents when
// that file exists (a missing file is not an error: the built-in
// defaults apply).
func Load(defaultsPath string) (*Config, error) {
	cfg := &Config{
		Port:             envInt("PORT", 8080),
		ReadTimeout:      envDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:     envDuration("WRITE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:  envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestSizeMB: int64(envInt("MAX_REQUEST_SIZE_MB", 20)),
		Engine: EngineDefaults{
			Author:           envString("REDLINE_AUTHOR", "AI"),
			GenerateRedlines: true,
			StripMarkdown:    true,
		},
	}

	if defaultsPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(defaultsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", defaultsPath, err)
	}
	if err := yaml.Unmarshal(data, &cfg.Engine); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", defaultsPath, err)
	}
	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

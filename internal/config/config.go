// Package config loads application settings from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application settings.
type Config struct {
	// Server
	ListenAddr string `yaml:"listen_addr"`

	// Database
	DatabasePath string `yaml:"database_path"`

	// AI model capability
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	AIModel       string `yaml:"ai_model"`
	AIMaxTokens   int    `yaml:"ai_max_tokens"`

	// Web knowledge search (optional)
	SerperAPIKey string `yaml:"serper_api_key"`

	// Conversation memory
	MemoryCap         int           `yaml:"memory_cap"`
	MemoryStaleness   time.Duration `yaml:"memory_staleness"`
	MemorySweepPeriod time.Duration `yaml:"memory_sweep_period"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		ListenAddr:        ":8080",
		DatabasePath:      "state/skema.db",
		OpenAIBaseURL:     "https://api.openai.com/v1",
		AIModel:           "gpt-4-turbo-preview",
		AIMaxTokens:       4000,
		MemoryCap:         30,
		MemoryStaleness:   2 * time.Hour,
		MemorySweepPeriod: 10 * time.Minute,
	}
}

// Load reads config.yaml from path (if it exists), then applies environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.ListenAddr, "LISTEN_ADDR")
	setString(&c.DatabasePath, "DATABASE_PATH")
	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.AIModel, "AI_MODEL")
	setInt(&c.AIMaxTokens, "AI_MAX_TOKENS")
	setString(&c.SerperAPIKey, "SERPER_API_KEY")
	setInt(&c.MemoryCap, "MEMORY_CAP")
	setDuration(&c.MemoryStaleness, "MEMORY_STALENESS")
	setDuration(&c.MemorySweepPeriod, "MEMORY_SWEEP_PERIOD")
}

func (c *Config) validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.MemoryCap < 2 {
		return fmt.Errorf("memory_cap must be at least 2, got %d", c.MemoryCap)
	}
	if c.MemoryStaleness <= 0 {
		return fmt.Errorf("memory_staleness must be positive")
	}
	if c.MemorySweepPeriod <= 0 {
		return fmt.Errorf("memory_sweep_period must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

var globalConfig *Config

// Load reads the configuration file and applies defaults and
// environment overrides.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/taskflow.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	globalConfig = &cfg
	return &cfg, nil
}

// Get returns the global configuration, falling back to defaults when
// no file was loaded.
func Get() *Config {
	if globalConfig == nil {
		cfg := &Config{}
		applyDefaults(cfg)
		applyEnv(cfg)
		globalConfig = cfg
	}
	return globalConfig
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = ".taskflow/plans.db"
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = "llama3.2:3b"
	}
	if cfg.Ollama.Temperature == 0 {
		cfg.Ollama.Temperature = 0.7
	}
	if cfg.Ollama.TopP == 0 {
		cfg.Ollama.TopP = 0.9
	}
	if cfg.Ollama.MaxTokens == 0 {
		cfg.Ollama.MaxTokens = 2000
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.Enabled = true
		cfg.Cache.MaxEntries = 100
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.RequestsPerMinute = 10
	}
}

// applyEnv lets deployment environments override the file without
// editing it.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TASKFLOW_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TASKFLOW_DB"); v != "" {
		cfg.Database.Path = expandHomePath(v)
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.Ollama.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		cfg.Ollama.Model = v
	}
	if v := os.Getenv("TASKFLOW_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimit.RequestsPerMinute = n
		}
	}
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

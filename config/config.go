package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config structure
type Config struct {
	LLMProvider  string `json:"llmProvider"`
	APIKey       string `json:"apiKey"`
	BaseURL      string `json:"baseUrl"`
	ModelName    string `json:"modelName"`
	MaxTokens    int    `json:"maxTokens"`
	DataCacheDir string `json:"dataCacheDir"`
	DetailedLog  bool   `json:"detailedLog"`
}

// DefaultConfig returns a Config with sensible defaults applied
func DefaultConfig() Config {
	return Config{
		LLMProvider: "OpenAI",
		ModelName:   "gpt-4o-mini",
		MaxTokens:   4096,
	}
}

// ConfigDir returns the directory where the config file lives
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %v", err)
	}
	return filepath.Join(home, ".vizchat"), nil
}

// Load reads the config file from path. A missing file yields defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %v", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %v", err)
	}

	if cfg.ModelName == "" {
		cfg.ModelName = DefaultConfig().ModelName
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	return cfg, nil
}

// Save writes the config as indented JSON, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %v", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %v", err)
	}
	return nil
}

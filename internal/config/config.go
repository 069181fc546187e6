package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Provider  string          `mapstructure:"provider"`
	Ask       AskConfig       `mapstructure:"ask"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
}

// AskConfig holds session-level defaults applied to every ask call.
type AskConfig struct {
	Instructions    string   `mapstructure:"instructions"`     // Pinned system instruction
	MaxTokens       int      `mapstructure:"max_tokens"`       // Output token cap (0 = backend default)
	Temperature     *float64 `mapstructure:"temperature"`      // Sampling temperature (unset = backend default)
	Reasoning       *bool    `mapstructure:"reasoning"`        // Enable thinking tokens where supported
	ReasoningBudget int      `mapstructure:"reasoning_budget"` // Requested thinking budget (0 = backend floor)
	Cacheable       bool     `mapstructure:"cacheable"`        // Mark the instruction cacheable where supported
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

func Load() (*Config, error) {
	configPath, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath(".")

	viper.SetDefault("provider", "anthropic")
	viper.SetDefault("anthropic.model", "claude-sonnet-4-5")
	viper.SetDefault("openai.model", "gpt-5.2")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")

	// Config file is optional; defaults plus env vars are enough.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Anthropic.APIKey = resolveKey(cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	cfg.OpenAI.APIKey = resolveKey(cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	cfg.Gemini.APIKey = resolveKey(cfg.Gemini.APIKey, "GEMINI_API_KEY")

	return &cfg, nil
}

// ApplyOverrides applies provider and model overrides to the config.
// If provider is non-empty, it overrides the global provider.
// If model is non-empty, it overrides the model for the active provider.
func (c *Config) ApplyOverrides(provider, model string) {
	if provider != "" {
		c.Provider = provider
	}
	if model != "" {
		switch c.Provider {
		case "anthropic":
			c.Anthropic.Model = model
		case "openai":
			c.OpenAI.Model = model
		case "gemini":
			c.Gemini.Model = model
		}
	}
}

// resolveKey expands env references in a configured key and falls back
// to the conventional environment variable.
func resolveKey(configured, envVar string) string {
	key := expandEnv(configured)
	if key == "" {
		key = os.Getenv(envVar)
	}
	return key
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// GetConfigDir returns the XDG config directory for unichat.
// Uses $XDG_CONFIG_HOME if set, otherwise ~/.config
func GetConfigDir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, "unichat"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "unichat"), nil
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// Exists returns true if a config file exists
func Exists() bool {
	path, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Save writes the config to disk
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`provider: %s

ask:
  # Pinned system instruction for every session
  # instructions: |
  #   Be concise. I'm an experienced developer.

anthropic:
  model: %s

openai:
  model: %s

gemini:
  model: %s
`, cfg.Provider, cfg.Anthropic.Model, cfg.OpenAI.Model, cfg.Gemini.Model)

	return os.WriteFile(path, []byte(content), 0600)
}

// Package config loads runtime configuration from an optional YAML file with
// environment variable overrides. Precedence: defaults, then file, then env.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration for a research session.
type Config struct {
	// Provider selects the reasoning backend: "openai", "anthropic" or
	// "gemini".
	Provider string `yaml:"provider"`

	// Model overrides the provider's default model name.
	Model string `yaml:"model"`

	// MaxRounds bounds the research iteration loop.
	MaxRounds int `yaml:"max_rounds"`

	// MaxConcurrency bounds parallel subtask execution. Zero means
	// unbounded.
	MaxConcurrency int `yaml:"max_concurrency"`

	// OutputDir is where markdown session records are written.
	OutputDir string `yaml:"output_dir"`

	// Log configures the structured logger.
	Log LogConfig `yaml:"log"`

	// API keys come from the environment only, never from the file.
	TavilyAPIKey    string `yaml:"-"`
	OpenAIAPIKey    string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
	GeminiAPIKey    string `yaml:"-"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider:  "openai",
		MaxRounds: 3,
		OutputDir: "./research_output",
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays DEEPRESEARCH_* settings and provider API keys.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DEEPRESEARCH_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("DEEPRESEARCH_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("DEEPRESEARCH_MAX_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRounds = n
		}
	}
	if v := os.Getenv("DEEPRESEARCH_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxConcurrency = n
		}
	}
	if v := os.Getenv("DEEPRESEARCH_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("DEEPRESEARCH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("DEEPRESEARCH_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	cfg.TavilyAPIKey = os.Getenv("TAVILY_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
}

// Validate checks the loaded configuration for usable values.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be at least 1, got %d", c.MaxRounds)
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must not be negative, got %d", c.MaxConcurrency)
	}
	return nil
}

// ProviderAPIKey returns the API key matching the configured provider.
func (c Config) ProviderAPIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	case "gemini":
		return c.GeminiAPIKey
	}
	return ""
}

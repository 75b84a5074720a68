package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Built-in model identifiers offered in the model picker.
const (
	DefaultModelA = "gemini-1.5-pro"
	DefaultModelB = "gemini-1.5-flash"
)

// Config represents the application configuration
type Config struct {
	LLMProvider string          `json:"llm_provider" toml:"llm_provider"`
	Providers   ProvidersConfig `json:"providers" toml:"providers"`
	Models      ModelsConfig    `json:"models" toml:"models"`
	Chat        ChatConfig      `json:"chat" toml:"chat"`
	Storage     StorageConfig   `json:"storage" toml:"storage"`
	Speech      SpeechConfig    `json:"speech" toml:"speech"`
	Web         WebConfig       `json:"web" toml:"web"`
	LogLevel    string          `json:"log_level" toml:"log_level"`
	LogFormat   string          `json:"log_format" toml:"log_format"`
	LogFile     string          `json:"log_file" toml:"log_file"`
}

// ProvidersConfig holds per-provider settings.
type ProvidersConfig struct {
	Google GoogleConfig `json:"google" toml:"google"`
	OpenAI OpenAIConfig `json:"openai" toml:"openai"`
}

// GoogleConfig holds the Gemini API configuration
type GoogleConfig struct {
	APIKey            string  `json:"api_key" toml:"api_key"`
	Model             string  `json:"model" toml:"model"`
	Temperature       float64 `json:"temperature" toml:"temperature"`
	MaxTokens         int     `json:"max_tokens" toml:"max_tokens"`
	APITimeoutSeconds int     `json:"api_timeout_seconds" toml:"api_timeout_seconds"`
}

// OpenAIConfig holds settings for an OpenAI-compatible endpoint. Pointing
// APIURL at Gemini's OpenAI compatibility layer keeps the same models.
type OpenAIConfig struct {
	APIKey            string  `json:"api_key" toml:"api_key"`
	APIURL            string  `json:"api_url" toml:"api_url"`
	Model             string  `json:"model" toml:"model"`
	Temperature       float64 `json:"temperature" toml:"temperature"`
	MaxTokens         int     `json:"max_tokens" toml:"max_tokens"`
	APITimeoutSeconds int     `json:"api_timeout_seconds" toml:"api_timeout_seconds"`
}

// ModelsConfig names the two selectable models.
type ModelsConfig struct {
	ModelA string `json:"model_a" toml:"model_a"`
	ModelB string `json:"model_b" toml:"model_b"`
}

// ChatConfig holds session defaults.
type ChatConfig struct {
	Stream bool `json:"stream" toml:"stream"`
}

// StorageConfig selects the key-value backend for chat state.
type StorageConfig struct {
	Backend       string `json:"backend" toml:"backend"` // "file", "sqlite", "redis", "memory"
	Path          string `json:"path" toml:"path"`
	RedisAddr     string `json:"redis_addr" toml:"redis_addr"`
	RedisPassword string `json:"redis_password" toml:"redis_password"`
	RedisDB       int    `json:"redis_db" toml:"redis_db"`
	KeyPrefix     string `json:"key_prefix" toml:"key_prefix"`
}

// SpeechConfig holds read-aloud settings.
type SpeechConfig struct {
	Locale  string `json:"locale" toml:"locale"`
	Command string `json:"command" toml:"command"` // empty = autodetect
}

// WebConfig holds the HTTP surface settings.
type WebConfig struct {
	Addr string `json:"addr" toml:"addr"`
}

// Default returns a configuration with default values
func Default() Config {
	return Config{
		LLMProvider: "google",
		Providers: ProvidersConfig{
			Google: GoogleConfig{
				APIKey:            "",
				Model:             DefaultModelA,
				Temperature:       0.7,
				MaxTokens:         2048,
				APITimeoutSeconds: 60,
			},
			OpenAI: OpenAIConfig{
				APIURL:            "https://generativelanguage.googleapis.com/v1beta/openai/",
				Model:             DefaultModelA,
				Temperature:       0.7,
				MaxTokens:         2048,
				APITimeoutSeconds: 60,
			},
		},
		Models: ModelsConfig{
			ModelA: DefaultModelA,
			ModelB: DefaultModelB,
		},
		Chat: ChatConfig{Stream: true},
		Storage: StorageConfig{
			Backend:   "file",
			KeyPrefix: "gemini_chat:",
		},
		Speech: SpeechConfig{
			Locale: "tr-TR",
		},
		Web: WebConfig{
			Addr: "127.0.0.1:8080",
		},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Load loads configuration from the specified path.
// If the file doesn't exist, creates one with default values.
// Environment variables override file values.
func Load(configPath string) (Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return Config{}, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg, err := readFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			if err := Save(configPath, cfg); err != nil {
				return Config{}, fmt.Errorf("failed to create default config: %w", err)
			}
			return applyEnvironmentOverrides(cfg), nil
		}
		return Config{}, err
	}

	return applyEnvironmentOverrides(cfg), nil
}

func readFile(configPath string) (Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	// Start from defaults so sections missing in the file keep sane values.
	cfg := Default()
	if isTOML(configPath) {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// SaveUserSettings writes the fields editable from the settings panel
// into the file at configPath. Everything else is taken from the file, so
// values that came from environment overrides (the API key) stay out of it.
func SaveUserSettings(configPath string, edited Config) error {
	cfg, err := readFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return err
	}

	cfg.SetActiveModel(edited.ActiveModel())
	cfg.SetActiveTemperature(edited.ActiveTemperature())
	cfg.Chat = edited.Chat
	cfg.LogLevel = edited.LogLevel
	return Save(configPath, cfg)
}

// Save saves the configuration to the specified path
func Save(configPath string, cfg Config) error {
	var data []byte
	if isTOML(configPath) {
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = []byte(sb.String())
	} else {
		var err error
		data, err = json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
// A missing API key is not an error: the session reports it on send.
func (c Config) Validate() error {
	if _, ok := ValidateProvider(c.LLMProvider); !ok {
		return fmt.Errorf("unsupported LLM provider: %s", c.LLMProvider)
	}

	if err := ValidateTemperature(c.Providers.Google.Temperature); err != nil {
		return err
	}
	if err := ValidateTemperature(c.Providers.OpenAI.Temperature); err != nil {
		return err
	}

	if c.Providers.Google.APITimeoutSeconds < 0 {
		return fmt.Errorf("api_timeout_seconds must not be negative, got: %d", c.Providers.Google.APITimeoutSeconds)
	}

	if strings.TrimSpace(c.Models.ModelA) == "" || strings.TrimSpace(c.Models.ModelB) == "" {
		return fmt.Errorf("models.model_a and models.model_b are required")
	}

	switch c.Storage.Backend {
	case "", "file", "sqlite", "memory":
	case "redis":
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return fmt.Errorf("storage.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.Storage.Backend)
	}

	return nil
}

// ValidateTemperature reports whether t is inside the accepted [0,1] range.
func ValidateTemperature(t float64) error {
	if t < 0 || t > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got: %g", t)
	}
	return nil
}

// SupportedProviders lists provider names accepted in llm_provider.
func SupportedProviders() []string {
	return []string{"google", "openai"}
}

// ValidateProvider normalizes and checks a provider name.
func ValidateProvider(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range SupportedProviders() {
		if name == p {
			return p, true
		}
	}
	return "", false
}

// SelectableModels returns the two models offered to the user.
func (c Config) SelectableModels() []string {
	return []string{c.Models.ModelA, c.Models.ModelB}
}

// ActiveAPIKey returns the key of the configured provider.
func (c Config) ActiveAPIKey() string {
	if c.LLMProvider == "openai" {
		return strings.TrimSpace(c.Providers.OpenAI.APIKey)
	}
	return strings.TrimSpace(c.Providers.Google.APIKey)
}

// ActiveModel returns the model of the configured provider.
func (c Config) ActiveModel() string {
	if c.LLMProvider == "openai" {
		return c.Providers.OpenAI.Model
	}
	return c.Providers.Google.Model
}

// ActiveTemperature returns the temperature of the configured provider.
func (c Config) ActiveTemperature() float64 {
	if c.LLMProvider == "openai" {
		return c.Providers.OpenAI.Temperature
	}
	return c.Providers.Google.Temperature
}

// SetActiveModel stores the model on the configured provider.
func (c *Config) SetActiveModel(model string) {
	if c.LLMProvider == "openai" {
		c.Providers.OpenAI.Model = model
		return
	}
	c.Providers.Google.Model = model
}

// SetActiveTemperature stores the temperature on the configured provider.
func (c *Config) SetActiveTemperature(t float64) {
	if c.LLMProvider == "openai" {
		c.Providers.OpenAI.Temperature = t
		return
	}
	c.Providers.Google.Temperature = t
}

func applyEnvironmentOverrides(cfg Config) Config {
	if key := firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"); key != "" {
		cfg.Providers.Google.APIKey = key
		if strings.TrimSpace(cfg.Providers.OpenAI.APIKey) == "" {
			cfg.Providers.OpenAI.APIKey = key
		}
	}
	if level := strings.ToLower(strings.TrimSpace(os.Getenv("GEMINI_CHAT_LOG_LEVEL"))); level != "" {
		switch level {
		case "trace", "debug", "info", "warn", "error":
			cfg.LogLevel = level
		}
	}
	if backend := strings.TrimSpace(os.Getenv("GEMINI_CHAT_STORAGE")); backend != "" {
		cfg.Storage.Backend = backend
	}
	return cfg
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	return filepath.Join(baseDir(), "config.json")
}

// DefaultStatePath returns the default location for persisted chat state.
func DefaultStatePath(backend string) string {
	switch backend {
	case "sqlite":
		return filepath.Join(baseDir(), "state.db")
	default:
		return filepath.Join(baseDir(), "state")
	}
}

func baseDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(homeDir) == "" {
		return ".gemini_chat"
	}
	return filepath.Join(homeDir, ".gemini_chat")
}

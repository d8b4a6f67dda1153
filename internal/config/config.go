// Package config provides configuration loading and validation for the CLI and API server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/llm"
)

// Defaults
const (
	DefaultDatabaseURL        = "sqlite://./metrics.db"
	DefaultPort               = 8000
	DefaultCORSOrigin         = "http://localhost:5173"
	DefaultMaxUploadBytes     = 10 * 1024 * 1024
	DefaultJWTExpirationHours = 24
	DefaultRateLimit          = 1000
	DefaultRateLimitWindow    = 60
)

// Config is the process configuration. It is assembled from the environment
// and an optional JSON or YAML file; all fields are optional there.
type Config struct {
	// Provider
	LLMProvider       string `json:"llm_provider,omitempty" yaml:"llm_provider,omitempty"`
	OpenAIAPIKey      string `json:"openai_api_key,omitempty" yaml:"openai_api_key,omitempty"`
	AnthropicAPIKey   string `json:"anthropic_api_key,omitempty" yaml:"anthropic_api_key,omitempty"`
	GeminiAPIKey      string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty"`
	OpenAIModel       string `json:"openai_model,omitempty" yaml:"openai_model,omitempty"`
	AnthropicModel    string `json:"anthropic_model,omitempty" yaml:"anthropic_model,omitempty"`
	GeminiModel       string `json:"gemini_model,omitempty" yaml:"gemini_model,omitempty"`
	LLMTimeoutSeconds int    `json:"llm_timeout_seconds,omitempty" yaml:"llm_timeout_seconds,omitempty"`

	// Storage and metrics
	DatabaseURL   string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	EnableMetrics *bool  `json:"enable_metrics,omitempty" yaml:"enable_metrics,omitempty"`

	// Server
	Port           int      `json:"port,omitempty" yaml:"port,omitempty"`
	CORSOrigins    []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
	MaxUploadBytes int64    `json:"max_upload_bytes,omitempty" yaml:"max_upload_bytes,omitempty"`

	// Metrics access tokens
	JWTSecret          string `json:"jwt_secret,omitempty" yaml:"jwt_secret,omitempty"`
	JWTExpirationHours int    `json:"jwt_expiration_hours,omitempty" yaml:"jwt_expiration_hours,omitempty"`

	// Rate limiting
	RateLimitEnabled       *bool    `json:"rate_limit_enabled,omitempty" yaml:"rate_limit_enabled,omitempty"`
	RateLimitDefault       int      `json:"rate_limit_default,omitempty" yaml:"rate_limit_default,omitempty"`
	RateLimitWindowSeconds int      `json:"rate_limit_window_seconds,omitempty" yaml:"rate_limit_window_seconds,omitempty"`
	RateLimitWhitelist     []string `json:"rate_limit_whitelist,omitempty" yaml:"rate_limit_whitelist,omitempty"`
	RateLimitBlacklist     []string `json:"rate_limit_blacklist,omitempty" yaml:"rate_limit_blacklist,omitempty"`
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config error: '%s' %s", e.Field, e.Message)
}

// Default returns the built-in defaults.
func Default() Config {
	enabled := true
	return Config{
		LLMProvider:            string(llm.ProviderOpenAI),
		LLMTimeoutSeconds:      int(llm.DefaultTimeout / time.Second),
		DatabaseURL:            DefaultDatabaseURL,
		EnableMetrics:          &enabled,
		Port:                   DefaultPort,
		CORSOrigins:            []string{DefaultCORSOrigin},
		MaxUploadBytes:         DefaultMaxUploadBytes,
		JWTExpirationHours:     DefaultJWTExpirationHours,
		RateLimitEnabled:       &enabled,
		RateLimitDefault:       DefaultRateLimit,
		RateLimitWindowSeconds: DefaultRateLimitWindow,
	}
}

// Load builds the effective configuration: environment values win over the
// file at path (if any), which wins over the defaults.
func Load(path string, getenv func(string) string) (*Config, error) {
	env, err := FromEnv(getenv)
	if err != nil {
		return nil, err
	}

	merged := *env
	if path != "" {
		file, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged = merged.MergeWithDefaults(*file)
	}
	merged = merged.MergeWithDefaults(Default())

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// FromEnv reads the configuration keys from getenv. Unset keys stay zero.
func FromEnv(getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := &Config{
		LLMProvider:     env("LLM_PROVIDER"),
		OpenAIAPIKey:    env("OPENAI_API_KEY"),
		AnthropicAPIKey: env("ANTHROPIC_API_KEY"),
		GeminiAPIKey:    env("GEMINI_API_KEY"),
		OpenAIModel:     env("OPENAI_MODEL"),
		AnthropicModel:  env("ANTHROPIC_MODEL"),
		GeminiModel:     env("GEMINI_MODEL"),
		DatabaseURL:     env("DATABASE_URL"),
		JWTSecret:       env("JWT_SECRET"),
	}

	var err error
	if v := env("LLM_TIMEOUT"); v != "" {
		if cfg.LLMTimeoutSeconds, err = parseSeconds(v); err != nil {
			return nil, &ValidationError{Field: "LLM_TIMEOUT", Message: err.Error()}
		}
	}
	if cfg.EnableMetrics, err = envBool(env("ENABLE_METRICS"), "ENABLE_METRICS"); err != nil {
		return nil, err
	}
	if cfg.Port, err = envInt(env("PORT"), "PORT"); err != nil {
		return nil, err
	}
	if v := env("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if v := env("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, &ValidationError{Field: "MAX_UPLOAD_BYTES", Message: "must be an integer"}
		}
		cfg.MaxUploadBytes = n
	}
	if cfg.JWTExpirationHours, err = envInt(env("JWT_EXPIRATION_HOURS"), "JWT_EXPIRATION_HOURS"); err != nil {
		return nil, err
	}

	if cfg.RateLimitEnabled, err = envBool(env("RATE_LIMIT_ENABLED"), "RATE_LIMIT_ENABLED"); err != nil {
		return nil, err
	}
	if cfg.RateLimitDefault, err = envInt(env("RATE_LIMIT_DEFAULT_LIMIT"), "RATE_LIMIT_DEFAULT_LIMIT"); err != nil {
		return nil, err
	}
	if v := env("RATE_LIMIT_DEFAULT_WINDOW"); v != "" {
		if cfg.RateLimitWindowSeconds, err = parseSeconds(v); err != nil {
			return nil, &ValidationError{Field: "RATE_LIMIT_DEFAULT_WINDOW", Message: err.Error()}
		}
	}
	cfg.RateLimitWhitelist = splitList(env("RATE_LIMIT_WHITELIST"))
	cfg.RateLimitBlacklist = splitList(env("RATE_LIMIT_BLACKLIST"))

	return cfg, nil
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.LLMProvider != "" {
		switch llm.Provider(strings.ToLower(c.LLMProvider)) {
		case llm.ProviderOpenAI, llm.ProviderAnthropic, llm.ProviderGemini:
		default:
			return &ValidationError{Field: "llm_provider", Message: "must be one of openai, anthropic, gemini"}
		}
	}
	if c.LLMTimeoutSeconds < 0 {
		return &ValidationError{Field: "llm_timeout_seconds", Message: "must be non-negative"}
	}
	if c.Port < 0 || c.Port > 65535 {
		return &ValidationError{Field: "port", Message: "must be between 0 and 65535"}
	}
	if c.MaxUploadBytes < 0 {
		return &ValidationError{Field: "max_upload_bytes", Message: "must be non-negative"}
	}
	if c.DatabaseURL != "" && !supportedDatabaseURL(c.DatabaseURL) {
		return &ValidationError{Field: "database_url", Message: "must start with postgres://, postgresql:// or sqlite:"}
	}
	if c.JWTExpirationHours < 0 {
		return &ValidationError{Field: "jwt_expiration_hours", Message: "must be non-negative"}
	}
	if c.RateLimitDefault < 0 || c.RateLimitWindowSeconds < 0 {
		return &ValidationError{Field: "rate_limit", Message: "limits must be non-negative"}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	for _, f := range []struct{ dst, def *string }{
		{&result.LLMProvider, &defaults.LLMProvider},
		{&result.OpenAIAPIKey, &defaults.OpenAIAPIKey},
		{&result.AnthropicAPIKey, &defaults.AnthropicAPIKey},
		{&result.GeminiAPIKey, &defaults.GeminiAPIKey},
		{&result.OpenAIModel, &defaults.OpenAIModel},
		{&result.AnthropicModel, &defaults.AnthropicModel},
		{&result.GeminiModel, &defaults.GeminiModel},
		{&result.DatabaseURL, &defaults.DatabaseURL},
		{&result.JWTSecret, &defaults.JWTSecret},
	} {
		if *f.dst == "" {
			*f.dst = *f.def
		}
	}

	for _, f := range []struct{ dst, def *int }{
		{&result.LLMTimeoutSeconds, &defaults.LLMTimeoutSeconds},
		{&result.Port, &defaults.Port},
		{&result.JWTExpirationHours, &defaults.JWTExpirationHours},
		{&result.RateLimitDefault, &defaults.RateLimitDefault},
		{&result.RateLimitWindowSeconds, &defaults.RateLimitWindowSeconds},
	} {
		if *f.dst == 0 {
			*f.dst = *f.def
		}
	}

	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if result.EnableMetrics == nil {
		result.EnableMetrics = defaults.EnableMetrics
	}
	if result.RateLimitEnabled == nil {
		result.RateLimitEnabled = defaults.RateLimitEnabled
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}
	if len(result.RateLimitWhitelist) == 0 {
		result.RateLimitWhitelist = defaults.RateLimitWhitelist
	}
	if len(result.RateLimitBlacklist) == 0 {
		result.RateLimitBlacklist = defaults.RateLimitBlacklist
	}

	return result
}

// MetricsEnabled reports whether usage events should be recorded. Defaults to true.
func (c *Config) MetricsEnabled() bool {
	return c.EnableMetrics == nil || *c.EnableMetrics
}

// RateLimitOn reports whether the rate limiter is active. Defaults to true.
func (c *Config) RateLimitOn() bool {
	return c.RateLimitEnabled == nil || *c.RateLimitEnabled
}

// LLMConfig returns the client settings for the selected provider.
func (c *Config) LLMConfig() *llm.Config {
	provider := llm.ParseProvider(c.LLMProvider)
	cfg := llm.DefaultConfig(provider)

	switch provider {
	case llm.ProviderAnthropic:
		cfg.APIKey, cfg.Model = c.AnthropicAPIKey, c.AnthropicModel
	case llm.ProviderGemini:
		cfg.APIKey, cfg.Model = c.GeminiAPIKey, c.GeminiModel
	default:
		cfg.APIKey, cfg.Model = c.OpenAIAPIKey, c.OpenAIModel
	}
	if cfg.Model == "" {
		cfg.Model = llm.DefaultModel(provider)
	}
	if c.LLMTimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(c.LLMTimeoutSeconds) * time.Second
	}
	return cfg
}

func supportedDatabaseURL(u string) bool {
	return strings.HasPrefix(u, "postgres://") ||
		strings.HasPrefix(u, "postgresql://") ||
		strings.HasPrefix(u, "sqlite:")
}

// parseSeconds accepts a Go duration ("90s", "2m") or a bare number of seconds.
func parseSeconds(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("must be seconds or a duration like 30s")
	}
	return int(d / time.Second), nil
}

func envInt(v, key string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ValidationError{Field: key, Message: "must be an integer"}
	}
	return n, nil
}

func envBool(v, key string) (*bool, error) {
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, &ValidationError{Field: key, Message: "must be a boolean"}
	}
	return &b, nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

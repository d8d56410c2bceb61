package config

import (
	"os"
	"strconv"
	"time"
)

// Default values for configuration.
const (
	DefaultChunkSize      = 10
	DefaultLLMModel       = "gpt-4o-mini"
	DefaultLLMBaseURL     = "https://api.openai.com/v1"
	DefaultLLMAPIKeyEnv   = "OPENAI_API_KEY"
	DefaultLLMTimeout     = 60 * time.Second
	DefaultLLMTemperature = 0.3
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvChunkSize = "LOGINSIGHT_CHUNK_SIZE"
	EnvModel     = "LOGINSIGHT_MODEL"
	EnvBaseURL   = "LOGINSIGHT_BASE_URL"
)

// DefaultSeverityTokens is the built-in severity token set, scanned
// case-insensitively.
func DefaultSeverityTokens() []string {
	return []string{"ERROR", "WARNING", "INFO", "DEBUG", "CRITICAL"}
}

// DefaultTimestampFormats returns the built-in ordered timestamp formats.
// More specific patterns come first so that first-match-wins stays correct.
func DefaultTimestampFormats() []TimestampFormatConfig {
	return []TimestampFormatConfig{
		{
			Name:    "iso8601",
			Pattern: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})?)`,
			Layout:  "2006-01-02T15:04:05",
		},
		{
			Name:    "datetime",
			Pattern: `^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`,
			Layout:  "2006-01-02 15:04:05",
		},
		{
			Name:    "bracketed-datetime",
			Pattern: `^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\]`,
			Layout:  "2006-01-02 15:04:05",
		},
		{
			Name:    "syslog",
			Pattern: `^(\w{3}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2})`,
			Layout:  "Jan 2 15:04:05",
		},
	}
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogSources:       []string{},
		ChunkSize:        DefaultChunkSize,
		TimestampFormats: DefaultTimestampFormats(),
		SeverityTokens:   DefaultSeverityTokens(),
		LLM: LLMConfig{
			Model:       DefaultLLMModel,
			BaseURL:     DefaultLLMBaseURL,
			APIKeyEnv:   DefaultLLMAPIKeyEnv,
			Timeout:     DefaultLLMTimeout,
			Temperature: DefaultLLMTemperature,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv(EnvChunkSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ChunkSize = n
		}
	}
	if model := os.Getenv(EnvModel); model != "" {
		c.LLM.Model = model
	}
	if url := os.Getenv(EnvBaseURL); url != "" {
		c.LLM.BaseURL = url
	}
}

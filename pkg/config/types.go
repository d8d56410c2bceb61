// Package config provides configuration loading and validation for Log Insights.
package config

import (
	"os"
	"regexp"
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	LogSources       []string                `yaml:"log_sources"`
	ChunkSize        int                     `yaml:"chunk_size"`
	TimestampFormats []TimestampFormatConfig `yaml:"timestamp_formats"`
	SeverityTokens   []string                `yaml:"severity_tokens,omitempty"`
	LLM              LLMConfig               `yaml:"llm"`
	Webhooks         []WebhookConfig         `yaml:"webhooks,omitempty"`
}

// TimestampFormatConfig defines one timestamp matcher. Formats are tried in
// the order they appear; the first match wins. New formats are added by
// appending entries, never by changing extractor code.
type TimestampFormatConfig struct {
	// Name identifies the format in output and diagnostics.
	Name string `yaml:"name"`

	// Pattern is a regex that captures the timestamp portion of a log line.
	// Must contain at least one capture group.
	Pattern string `yaml:"pattern"`

	// Layout is the Go time layout string for parsing the captured timestamp.
	// See https://pkg.go.dev/time#pkg-constants for format.
	Layout string `yaml:"layout"`

	// compiledPattern is the pre-compiled regex (populated during validation).
	compiledPattern *regexp.Regexp
}

// CompiledPattern returns the pre-compiled regex pattern.
func (t *TimestampFormatConfig) CompiledPattern() *regexp.Regexp {
	return t.compiledPattern
}

// LLMConfig configures the hosted model used to analyze chunks.
type LLMConfig struct {
	// Model is the model identifier sent with each request.
	Model string `yaml:"model"`

	// BaseURL is the root of an OpenAI-compatible API.
	BaseURL string `yaml:"base_url,omitempty"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Temperature is the sampling temperature for analysis requests.
	Temperature float64 `yaml:"temperature,omitempty"`
}

// APIKey reads the API key from the configured environment variable.
func (l *LLMConfig) APIKey() string {
	return os.Getenv(l.APIKeyEnv)
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnCritical fires only when the analysis found at least
	// one Critical-severity issue (default).
	WebhookTriggerOnCritical WebhookTrigger = "on_critical"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_critical" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/espirado/log-insights/pkg/parser"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and compiles regex patterns.
// Configuration failures are fatal at startup; nothing is validated mid-run.
func Validate(cfg *Config) error {
	if len(cfg.LogSources) == 0 {
		return errors.New("log_sources: at least one log source is required")
	}

	if cfg.ChunkSize < 1 {
		return fmt.Errorf("chunk_size: %w, got %d", parser.ErrInvalidChunkSize, cfg.ChunkSize)
	}

	if len(cfg.TimestampFormats) == 0 {
		return errors.New("timestamp_formats: at least one format is required")
	}

	for i := range cfg.TimestampFormats {
		if err := validateTimestampFormat(&cfg.TimestampFormats[i]); err != nil {
			return fmt.Errorf("timestamp_formats[%d] (%s): %w", i, cfg.TimestampFormats[i].Name, err)
		}
	}

	if len(cfg.SeverityTokens) == 0 {
		cfg.SeverityTokens = DefaultSeverityTokens()
	}

	if err := validateLLM(&cfg.LLM); err != nil {
		return fmt.Errorf("llm: %w", err)
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

// Patterns converts the configured timestamp formats into the ordered
// pattern set consumed by the extractor.
func (c *Config) Patterns() ([]parser.TimestampPattern, error) {
	patterns := make([]parser.TimestampPattern, 0, len(c.TimestampFormats))
	for _, tf := range c.TimestampFormats {
		p, err := parser.NewTimestampPattern(tf.Name, tf.Pattern, tf.Layout)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// Tokens returns the configured severity tokens as parser levels.
func (c *Config) Tokens() []parser.Level {
	tokens := make([]parser.Level, 0, len(c.SeverityTokens))
	for _, t := range c.SeverityTokens {
		tokens = append(tokens, parser.Level(strings.ToUpper(t)))
	}
	return tokens
}

// Extractor builds the timestamp/level extractor from the configuration.
func (c *Config) Extractor() (*parser.Extractor, error) {
	patterns, err := c.Patterns()
	if err != nil {
		return nil, err
	}
	return parser.NewExtractor(patterns, c.Tokens()), nil
}

func validateTimestampFormat(tf *TimestampFormatConfig) error {
	if tf.Name == "" {
		return errors.New("name is required")
	}

	if tf.Pattern == "" {
		return errors.New("pattern is required")
	}

	re, err := regexp.Compile(tf.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	if re.NumSubexp() < 1 {
		return errors.New("pattern must have at least one capture group for the timestamp")
	}

	tf.compiledPattern = re

	if tf.Layout == "" {
		return errors.New("layout is required")
	}

	return nil
}

func validateLLM(l *LLMConfig) error {
	if l.Model == "" {
		return errors.New("model is required")
	}

	if l.BaseURL == "" {
		l.BaseURL = DefaultLLMBaseURL
	}

	u, err := url.Parse(l.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url scheme must be http or https, got %q", u.Scheme)
	}

	if l.APIKeyEnv == "" {
		l.APIKeyEnv = DefaultLLMAPIKeyEnv
	}

	if l.Timeout <= 0 {
		l.Timeout = DefaultLLMTimeout
	}

	if l.Temperature < 0 || l.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", l.Temperature)
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	if wh.Trigger != "" {
		switch wh.Trigger {
		case WebhookTriggerOnCritical, WebhookTriggerAlways, WebhookTriggerNever:
			// Valid
		default:
			return fmt.Errorf("invalid trigger %q (must be on_critical, always, or never)", wh.Trigger)
		}
	} else {
		wh.Trigger = WebhookTriggerOnCritical
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}

	// Handle $VAR format (no braces)
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		varName := s[1:]
		return os.Getenv(varName)
	}

	return s
}

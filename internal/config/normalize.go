package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMistral()
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeMistral() {
	if c.Mistral.APIKey == "" {
		if value, ok := os.LookupEnv("MISTRAL_API_KEY"); ok {
			c.Mistral.APIKey = strings.TrimSpace(value)
		}
	}
	c.Mistral.BaseURL = strings.TrimRight(strings.TrimSpace(c.Mistral.BaseURL), "/")
	if c.Mistral.BaseURL == "" {
		c.Mistral.BaseURL = defaultMistralBaseURL
	}
	c.Mistral.Model = strings.TrimSpace(c.Mistral.Model)
	if c.Mistral.Model == "" {
		c.Mistral.Model = defaultMistralModel
	}
	if c.Mistral.TimeoutSeconds <= 0 {
		c.Mistral.TimeoutSeconds = defaultMistralTimeout
	}
}

func (c *Config) normalizeBatch() {
	if c.Batch.Concurrency <= 0 {
		c.Batch.Concurrency = defaultConcurrency
	}
	if c.Batch.MaxAttempts <= 0 {
		c.Batch.MaxAttempts = defaultMaxAttempts
	}
	if c.Batch.RetryBaseSeconds <= 0 {
		c.Batch.RetryBaseSeconds = defaultRetryBaseSeconds
	}
	if c.Batch.RetryMaxSeconds <= 0 {
		c.Batch.RetryMaxSeconds = defaultRetryMaxSeconds
	}
	if c.Batch.TimeoutSeconds < 0 {
		c.Batch.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

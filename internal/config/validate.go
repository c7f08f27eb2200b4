package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMistral(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateMistral() error {
	if c.Mistral.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/scribe/config.toml"
		}
		return fmt.Errorf("mistral.api_key is required. Set MISTRAL_API_KEY env var or edit %s (create with 'scribe config init')", defaultPath)
	}
	if c.Mistral.TimeoutSeconds <= 0 {
		return errors.New("mistral.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 64 {
		return errors.New("batch.concurrency must be between 1 and 64")
	}
	if c.Batch.MaxAttempts < 1 {
		return errors.New("batch.max_attempts must be at least 1")
	}
	if c.Batch.RetryBaseSeconds < 1 {
		return errors.New("batch.retry_base_seconds must be at least 1")
	}
	if c.Batch.RetryMaxSeconds < c.Batch.RetryBaseSeconds {
		return errors.New("batch.retry_max_seconds must be at least batch.retry_base_seconds")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

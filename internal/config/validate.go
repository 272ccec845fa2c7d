package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Credentials are not checked
// here: review, undo, and report work without them, and the clients report a
// missing key when they are constructed.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateSports(); err != nil {
		return err
	}
	if err := c.validateRates(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.ConfidenceThreshold < 0 || c.Matching.ConfidenceThreshold > 1 {
		return errors.New("matching.confidence_threshold must be between 0 and 1")
	}
	if c.Matching.BatchSize <= 0 {
		return errors.New("matching.batch_size must be positive")
	}
	if c.Matching.MaxEntities <= 0 {
		return errors.New("matching.max_entities must be positive")
	}
	return nil
}

func (c *Config) validateSports() error {
	if len(c.Sports) == 0 {
		return errors.New("at least one [[sports]] entry is required")
	}
	seen := make(map[string]struct{}, len(c.Sports))
	for i, s := range c.Sports {
		if s.Dir == "" {
			return fmt.Errorf("sports[%d].dir must be set", i)
		}
		if s.SportID == "" {
			return fmt.Errorf("sports[%d].sport_id must be set", i)
		}
		if _, dup := seen[s.Dir]; dup {
			return fmt.Errorf("sports[%d].dir %q is listed more than once", i, s.Dir)
		}
		seen[s.Dir] = struct{}{}
	}
	return nil
}

func (c *Config) validateRates() error {
	if c.Catalog.RequestsPerMinute < 0 {
		return errors.New("catalog.requests_per_minute must be zero (unlimited) or positive")
	}
	if c.LLM.RequestsPerMinute < 0 {
		return errors.New("llm.requests_per_minute must be zero (unlimited) or positive")
	}
	if c.LLM.RetryAttempts < 0 {
		return errors.New("llm.retry_attempts must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// RequireCatalogKey reports whether catalog credentials are present.
func (c *Config) RequireCatalogKey() error {
	if c.Catalog.APIKey == "" {
		return c.missingKey("catalog.api_key", "SPORTSGAMEODDS_API_KEY")
	}
	return nil
}

// RequireLLMKey reports whether matching service credentials are present.
func (c *Config) RequireLLMKey() error {
	if c.LLM.APIKey == "" {
		return c.missingKey("llm.api_key", "OPENROUTER_API_KEY")
	}
	return nil
}

func (c *Config) missingKey(field, env string) error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/logonorm/config.toml"
	}
	return fmt.Errorf("%s is required. Set %s env var or edit %s (create with 'logonorm config init')", field, env, defaultPath)
}

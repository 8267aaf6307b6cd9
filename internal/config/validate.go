package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateReconcile(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.InboxDir == "" {
		return errors.New("paths.inbox_dir must be set")
	}
	if c.Paths.ArchiveDir == "" {
		return errors.New("paths.archive_dir must be set")
	}
	if c.Paths.LedgerPath == "" {
		return errors.New("paths.ledger_path must be set")
	}
	return nil
}

func (c *Config) validateReconcile() error {
	switch c.Reconcile.CanonicalPolicy {
	case "earliest", "latest":
		return nil
	default:
		return fmt.Errorf("reconcile.canonical_policy must be %q or %q, got %q", "earliest", "latest", c.Reconcile.CanonicalPolicy)
	}
}

func (c *Config) validateExtraction() error {
	if !c.Extraction.Enabled {
		return nil
	}
	if c.Extraction.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/tally/config.toml"
		}
		return fmt.Errorf("extraction.api_key is required. Set GEMINI_API_KEY env var or edit %s (create with 'tally config init')", defaultPath)
	}
	return nil
}

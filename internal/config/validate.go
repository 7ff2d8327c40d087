package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateOCR(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScan() error {
	if math.IsNaN(c.Scan.Interval) || c.Scan.Interval <= 0 {
		return errors.New("scan.interval must be greater than 0")
	}
	if !slices.Contains(Modes, c.Scan.Mode) {
		return fmt.Errorf("scan.mode: unsupported value %q (expected %s)", c.Scan.Mode, strings.Join(Modes, ", "))
	}
	if math.IsNaN(c.Scan.SimilarityThreshold) || c.Scan.SimilarityThreshold < 0 || c.Scan.SimilarityThreshold > 1 {
		return errors.New("scan.similarity_threshold must be between 0 and 1")
	}
	if c.Scan.HashThreshold < 0 {
		return errors.New("scan.hash_threshold must be non-negative")
	}
	return nil
}

func (c *Config) validateOCR() error {
	if c.OCR.TimeoutSeconds < 0 {
		return errors.New("ocr.timeout_seconds must be non-negative")
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
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be non-negative")
	}
	return nil
}

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
	if err := c.normalizeScan(); err != nil {
		return err
	}
	if err := c.normalizeOCR(); err != nil {
		return err
	}
	c.normalizeMedia()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() error {
	c.Scan.Mode = strings.ToLower(strings.TrimSpace(c.Scan.Mode))
	if c.Scan.Mode == "" {
		c.Scan.Mode = defaultScanMode
	}
	c.Scan.OutputDir = strings.TrimSpace(c.Scan.OutputDir)
	if c.Scan.OutputDir != "" {
		var err error
		if c.Scan.OutputDir, err = expandPath(c.Scan.OutputDir); err != nil {
			return fmt.Errorf("scan.output_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeOCR() error {
	if strings.TrimSpace(c.OCR.Binary) == "" {
		if value, ok := os.LookupEnv("SLIDECAP_TESSERACT"); ok {
			c.OCR.Binary = value
		}
	}
	c.OCR.Binary = strings.TrimSpace(c.OCR.Binary)
	c.OCR.Languages = strings.TrimSpace(c.OCR.Languages)
	if c.OCR.Languages == "" {
		c.OCR.Languages = defaultOCRLanguages
	}
	if strings.TrimSpace(c.OCR.TessdataDir) == "" {
		if value, ok := os.LookupEnv("TESSDATA_PREFIX"); ok {
			c.OCR.TessdataDir = value
		}
	}
	c.OCR.TessdataDir = strings.TrimSpace(c.OCR.TessdataDir)
	if c.OCR.TessdataDir != "" {
		var err error
		if c.OCR.TessdataDir, err = expandPath(c.OCR.TessdataDir); err != nil {
			return fmt.Errorf("ocr.tessdata_dir: %w", err)
		}
	}
	if c.OCR.TimeoutSeconds == 0 {
		c.OCR.TimeoutSeconds = defaultOCRTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeMedia() {
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
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

// Package config loads, normalizes, and validates slidecap configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SLIDECAP_TESSERACT and TESSDATA_PREFIX. The Config type centralizes every
// knob the scanner and CLI need, so detection thresholds, external binaries,
// and state/log directories are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

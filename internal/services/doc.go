// Package services defines shared utilities consumed by the scanner and its
// external-tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp scan session IDs and video names for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent history statuses (failed, skipped, cancelled).
//
// Use these helpers when wiring new collaborators so error handling and
// observability stay uniform across the pipeline.
package services

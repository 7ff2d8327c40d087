// Package history persists a ledger of completed scans and the screenshots
// each one produced in a local SQLite database.
//
// The ledger is write-once per scan: the scanner runs to completion, then the
// caller records the session and its artifacts in a single transaction. The
// CLI reads it back for `slidecap history`. Schema changes bump schemaVersion;
// an older database must be removed rather than migrated.
package history

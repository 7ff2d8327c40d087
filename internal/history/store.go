package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages the scan ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// ErrNotFound is returned when a scan lookup matches nothing.
var ErrNotFound = errors.New("scan not found")

// ErrAmbiguous is returned when a scan ID prefix matches more than one scan.
var ErrAmbiguous = errors.New("scan id prefix is ambiguous")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores a scan and its screenshots in one transaction.
func (s *Store) Record(ctx context.Context, scan Scan, shots []Screenshot) error {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(scan.ID) == "" {
		return errors.New("record scan: empty id")
	}
	return retryOnBusy(ctx, func() error {
		return s.record(ctx, scan, shots)
	})
}

func (s *Store) record(ctx context.Context, scan Scan, shots []Screenshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scans (
            id, video_path, output_dir, mode, interval_seconds,
            similarity_threshold, hash_threshold, status, error_message,
            frame_rate, decoded_frames, sampled_frames, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scan.ID,
		scan.VideoPath,
		scan.OutputDir,
		scan.Mode,
		scan.Interval,
		scan.SimilarityThreshold,
		scan.HashThreshold,
		string(scan.Status),
		nullableString(scan.ErrorMessage),
		scan.FrameRate,
		scan.DecodedFrames,
		scan.SampledFrames,
		formatTime(scan.StartedAt),
		formatTime(scan.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO screenshots (
            scan_id, sequence, frame_index, timestamp_seconds, path,
            persisted, text_changed, image_changed
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare screenshot insert: %w", err)
	}
	defer stmt.Close()

	for _, shot := range shots {
		if _, err := stmt.ExecContext(ctx,
			scan.ID,
			shot.Sequence,
			shot.FrameIndex,
			shot.TimestampSeconds,
			shot.Path,
			boolToInt(shot.Persisted),
			boolToInt(shot.TextChanged),
			boolToInt(shot.ImageChanged),
		); err != nil {
			return fmt.Errorf("insert screenshot %d: %w", shot.Sequence, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

const scanColumns = `s.id, s.video_path, s.output_dir, s.mode, s.interval_seconds,
        s.similarity_threshold, s.hash_threshold, s.status, s.error_message,
        s.frame_rate, s.decoded_frames, s.sampled_frames, s.started_at, s.finished_at,
        (SELECT COUNT(1) FROM screenshots sh WHERE sh.scan_id = s.id)`

// List returns the most recent scans, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Scan, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + scanColumns + ` FROM scans s ORDER BY s.started_at DESC, s.id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var scans []Scan
	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

// Get resolves a scan by full ID or unique ID prefix.
func (s *Store) Get(ctx context.Context, idPrefix string) (*Scan, error) {
	ctx = ensureContext(ctx)
	idPrefix = strings.TrimSpace(idPrefix)
	if idPrefix == "" {
		return nil, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+scanColumns+` FROM scans s WHERE s.id LIKE ? ESCAPE '\' LIMIT 2`,
		escapeLike(idPrefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("get scan: %w", err)
	}
	defer rows.Close()

	var matches []Scan
	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idPrefix)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, idPrefix)
	}
}

// Screenshots returns the artifacts of a scan in sequence order.
func (s *Store) Screenshots(ctx context.Context, scanID string) ([]Screenshot, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT scan_id, sequence, frame_index, timestamp_seconds, path,
                persisted, text_changed, image_changed
           FROM screenshots WHERE scan_id = ? ORDER BY sequence`,
		scanID,
	)
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}
	defer rows.Close()

	var shots []Screenshot
	for rows.Next() {
		var (
			shot                       Screenshot
			persisted, textHit, imgHit int
		)
		if err := rows.Scan(&shot.ScanID, &shot.Sequence, &shot.FrameIndex, &shot.TimestampSeconds,
			&shot.Path, &persisted, &textHit, &imgHit); err != nil {
			return nil, err
		}
		shot.Persisted = persisted != 0
		shot.TextChanged = textHit != 0
		shot.ImageChanged = imgHit != 0
		shots = append(shots, shot)
	}
	return shots, rows.Err()
}

// PruneBefore deletes scans that started before cutoff, returning the number removed.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM scans WHERE started_at < ?`, formatTime(cutoff))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune scans: %w", err)
	}
	return removed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(rows rowScanner) (Scan, error) {
	var (
		scan     Scan
		status   string
		errMsg   sql.NullString
		started  string
		finished string
	)
	if err := rows.Scan(
		&scan.ID, &scan.VideoPath, &scan.OutputDir, &scan.Mode, &scan.Interval,
		&scan.SimilarityThreshold, &scan.HashThreshold, &status, &errMsg,
		&scan.FrameRate, &scan.DecodedFrames, &scan.SampledFrames, &started, &finished,
		&scan.ScreenshotCount,
	); err != nil {
		return Scan{}, fmt.Errorf("scan row: %w", err)
	}
	scan.Status = Status(status)
	if errMsg.Valid {
		scan.ErrorMessage = errMsg.String
	}
	scan.StartedAt = parseTime(started)
	scan.FinishedAt = parseTime(finished)
	return scan, nil
}

// timeLayout keeps a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

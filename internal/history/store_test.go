package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"slidecap/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleScan(id string, started time.Time) history.Scan {
	return history.Scan{
		ID:                  id,
		VideoPath:           "/videos/lecture.mp4",
		OutputDir:           "/videos/lecture_screenshots",
		Mode:                "combined",
		Interval:            1.0,
		SimilarityThreshold: 0.95,
		HashThreshold:       10,
		Status:              history.StatusCompleted,
		FrameRate:           30,
		DecodedFrames:       90,
		SampledFrames:       3,
		StartedAt:           started,
		FinishedAt:          started.Add(2 * time.Second),
	}
}

func TestRecordAndReadBack(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	shots := []history.Screenshot{
		{Sequence: 1, FrameIndex: 0, TimestampSeconds: 0, Path: "/out/lecture_frame_001.png", Persisted: true, TextChanged: true, ImageChanged: true},
		{Sequence: 2, FrameIndex: 30, TimestampSeconds: 1, Path: "/out/lecture_frame_002.png", Persisted: false, TextChanged: true},
	}
	if err := store.Record(ctx, sampleScan("abc-123", started), shots); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	scan, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if scan.ID != "abc-123" || scan.ScreenshotCount != 2 {
		t.Fatalf("unexpected scan: %+v", scan)
	}
	if !scan.StartedAt.Equal(started) {
		t.Fatalf("unexpected started_at: %v", scan.StartedAt)
	}
	if scan.Duration() != 2*time.Second {
		t.Fatalf("unexpected duration: %v", scan.Duration())
	}

	got, err := store.Screenshots(ctx, scan.ID)
	if err != nil {
		t.Fatalf("Screenshots failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 screenshots, got %d", len(got))
	}
	if got[0].Sequence != 1 || !got[0].Persisted || !got[0].ImageChanged {
		t.Fatalf("unexpected first screenshot: %+v", got[0])
	}
	if got[1].Persisted || got[1].ImageChanged || !got[1].TextChanged {
		t.Fatalf("unexpected second screenshot: %+v", got[1])
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"first", "second", "third"} {
		if err := store.Record(ctx, sampleScan(id, base.Add(time.Duration(i)*time.Minute)), nil); err != nil {
			t.Fatalf("Record %s failed: %v", id, err)
		}
	}

	scans, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(scans) != 2 || scans[0].ID != "third" || scans[1].ID != "second" {
		t.Fatalf("unexpected order: %+v", scans)
	}
}

func TestGetReportsMissingAndAmbiguous(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now()
	for _, id := range []string{"aa-1", "aa-2"} {
		if err := store.Record(ctx, sampleScan(id, now), nil); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	if _, err := store.Get(ctx, "zz"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, "aa"); !errors.Is(err, history.ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
	if _, err := store.Get(ctx, "aa-2"); err != nil {
		t.Fatalf("expected exact id to resolve, got %v", err)
	}
}

func TestPruneBeforeCascadesScreenshots(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := store.Record(ctx, sampleScan("old", old), []history.Screenshot{{Sequence: 1, Path: "/a.png"}}); err != nil {
		t.Fatalf("Record old: %v", err)
	}
	if err := store.Record(ctx, sampleScan("recent", recent), nil); err != nil {
		t.Fatalf("Record recent: %v", err)
	}

	removed, err := store.PruneBefore(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("PruneBefore failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 scan removed, got %d", removed)
	}
	shots, err := store.Screenshots(ctx, "old")
	if err != nil {
		t.Fatalf("Screenshots failed: %v", err)
	}
	if len(shots) != 0 {
		t.Fatalf("expected screenshots to cascade, got %d", len(shots))
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Record(context.Background(), sampleScan("keep", time.Now()), nil); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(context.Background(), "keep"); err != nil {
		t.Fatalf("expected recorded scan after reopen: %v", err)
	}
}

func TestOpenRejectsOtherSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	_, err = history.Open(path)
	if !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), path) || !strings.Contains(err.Error(), "--no-history") {
		t.Fatalf("expected a hint naming the database, got %v", err)
	}
}

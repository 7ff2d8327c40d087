package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"slidecap/internal/logs"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func TestTailerLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slidecap-2026-03-01.log")
	writeLog(t, path, "a\nb\nc\n")

	lines, err := logs.NewTailer(path, nil).Last(2)
	if err != nil {
		t.Fatalf("Last returned error: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestTailerSessionFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slidecap.log")
	writeLog(t, path, "scan started session=abc\nother session=def\nscan finished session=abc\n")

	lines, err := logs.NewTailer(path, logs.SessionFilter("abc")).Last(10)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 2 || lines[1] != "scan finished session=abc" {
		t.Fatalf("unexpected filtered lines: %#v", lines)
	}
	if logs.SessionFilter("  ") != nil {
		t.Fatal("expected empty session to disable filtering")
	}
}

func TestTailerFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slidecap.log")
	writeLog(t, path, "start\n")

	tailer := logs.NewTailer(path, nil)
	tailer.Poll = 20 * time.Millisecond
	if _, err := tailer.Last(1); err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu  sync.Mutex
		got []string
	)
	done := make(chan error, 1)
	go func() {
		done <- tailer.Follow(ctx, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\npart"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "later" {
		t.Fatalf("expected only the complete appended line, got %#v", got)
	}
}

func TestLatestPicksNewestFile(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "slidecap-2026-03-01.log")
	newer := filepath.Join(dir, "slidecap-2026-03-02.log")
	writeLog(t, older, "x\n")
	writeLog(t, newer, "y\n")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	got, err := logs.Latest(dir, "slidecap-*.log")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got != newer {
		t.Fatalf("Latest = %q, want %q", got, newer)
	}

	if _, err := logs.Latest(t.TempDir(), "slidecap-*.log"); !errors.Is(err, logs.ErrNoLogs) {
		t.Fatalf("expected ErrNoLogs, got %v", err)
	}
}

package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"slidecap/internal/history"
	"slidecap/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "/usr/bin/ffmpeg", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestCheckKind(t *testing.T) {
	tests := []struct {
		result preflight.Result
		want   statusKind
	}{
		{preflight.Result{Passed: true}, statusOK},
		{preflight.Result{Optional: true}, statusWarn},
		{preflight.Result{}, statusError},
	}
	for _, tt := range tests {
		if got := checkKind(tt.result); got != tt.want {
			t.Fatalf("checkKind(%+v) = %v, want %v", tt.result, got, tt.want)
		}
	}
}

func TestScanStatusKind(t *testing.T) {
	if scanStatusKind(history.StatusCompleted) != statusOK {
		t.Fatal("completed should be OK")
	}
	if scanStatusKind(history.StatusSkipped) != statusWarn {
		t.Fatal("skipped should warn")
	}
	if scanStatusKind(history.StatusFailed) != statusError {
		t.Fatal("failed should be an error")
	}
}

func TestTableViewRendersFooter(t *testing.T) {
	view := tableView{
		headers: []string{"Video", "Shots"},
		aligns:  []columnAlignment{alignLeft, alignRight},
		rows:    [][]string{{"a.mp4", "3"}, {"b.mp4"}},
		footer:  []string{"total", "3"},
	}
	out := view.render()
	for _, want := range []string{"VIDEO", "a.mp4", "b.mp4", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}
	if (tableView{}).render() != "" {
		t.Fatal("expected empty render without headers")
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

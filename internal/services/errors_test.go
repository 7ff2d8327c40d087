package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"slidecap/internal/history"
	"slidecap/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "ocr", "tesseract", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"ocr", "tesseract", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestFailureStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want history.Status
	}{
		{"nil", nil, history.StatusCompleted},
		{"validation", services.Wrap(services.ErrValidation, "scan", "input", "bad extension", nil), history.StatusSkipped},
		{"not found", services.Wrap(services.ErrNotFound, "scan", "input", "missing", nil), history.StatusSkipped},
		{"external tool", services.Wrap(services.ErrExternalTool, "frames", "open", "ffprobe failed", errors.New("exit 1")), history.StatusFailed},
		{"cancelled", fmt.Errorf("scan: %w", context.Canceled), history.StatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.FailureStatus(tc.err); got != tc.want {
				t.Fatalf("FailureStatus = %s, want %s", got, tc.want)
			}
		})
	}
}

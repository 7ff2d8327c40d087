package main

import (
	"strings"
	"testing"
)

func TestCheckCommandImageMode(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "== Readiness ==")
	requireContains(t, out, "[OK] "+env.cfg.Media.FFmpegBinary)
	requireContains(t, out, "[WARN]")
	if strings.Contains(out, "OCR languages") {
		t.Fatalf("language check should be skipped in image mode:\n%s", out)
	}
}

func TestCheckCommandTextModeNeedsTesseract(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check", "--mode", "text"}, env.configPath)
	if err == nil {
		t.Fatalf("expected missing tesseract to fail:\n%s", out)
	}
	requireContains(t, err.Error(), "Tesseract")
	requireContains(t, out, "[ERROR]")
}

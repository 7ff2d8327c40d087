package ocr_test

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"slidecap/internal/ocr"
	"slidecap/internal/services"
	"slidecap/internal/testsupport"
)

func stubTesseract(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs")
	}
	path := filepath.Join(t.TempDir(), "tesseract")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func frame() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 4, 4))
}

func TestTesseractExtractReturnsStdout(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	bin := stubTesseract(t, `echo "$@" > `+argsFile+`
cat > /dev/null
printf '  Chapter 1\nIntroduction \n'`)

	extractor := &ocr.Tesseract{Binary: bin, Languages: "chi_sim+eng", TessdataDir: "/opt/tessdata", Timeout: 5 * time.Second}
	text, err := extractor.Extract(context.Background(), frame())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !strings.Contains(text, "Chapter 1") {
		t.Fatalf("unexpected text %q", text)
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	want := "stdin stdout -l chi_sim+eng --tessdata-dir /opt/tessdata"
	if strings.TrimSpace(string(args)) != want {
		t.Fatalf("unexpected args %q, want %q", strings.TrimSpace(string(args)), want)
	}
}

func TestTesseractFailureIsExternalToolError(t *testing.T) {
	bin := stubTesseract(t, `echo "Failed loading language 'xyz'" >&2; exit 1`)
	extractor := &ocr.Tesseract{Binary: bin, Languages: "xyz"}
	_, err := extractor.Extract(context.Background(), frame())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "Failed loading language") {
		t.Fatalf("expected stderr detail in error, got %v", err)
	}
}

func TestTesseractTimeout(t *testing.T) {
	bin := stubTesseract(t, `exec sleep 5`)
	extractor := &ocr.Tesseract{Binary: bin, Timeout: 100 * time.Millisecond}
	_, err := extractor.Extract(context.Background(), frame())
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestTesseractRejectsNilImage(t *testing.T) {
	extractor := &ocr.Tesseract{Binary: "tesseract"}
	if _, err := extractor.Extract(context.Background(), nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNewTesseractFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.OCR.Binary = "/usr/local/bin/tesseract"
	cfg.OCR.TimeoutSeconds = 7
	extractor := ocr.NewTesseract(cfg)
	if extractor.Binary != "/usr/local/bin/tesseract" {
		t.Fatalf("unexpected binary %q", extractor.Binary)
	}
	if extractor.Languages != "chi_sim+eng" {
		t.Fatalf("unexpected languages %q", extractor.Languages)
	}
	if extractor.Timeout != 7*time.Second {
		t.Fatalf("unexpected timeout %v", extractor.Timeout)
	}
	args := extractor.Args()
	if len(args) != 4 || args[3] != "chi_sim+eng" {
		t.Fatalf("unexpected args %v", args)
	}
}

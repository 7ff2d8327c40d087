package preflight

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"slidecap/internal/detect"
	"slidecap/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSystemDepsTesseractOptionalForImageMode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.OCR.Binary = "clearly-not-present-tesseract"

	statuses := CheckSystemDeps(cfg, detect.ModeImage)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	tess := statuses[2]
	if tess.Available || !tess.Optional {
		t.Fatalf("expected tesseract optional and unavailable, got %#v", tess)
	}

	statuses = CheckSystemDeps(cfg, detect.ModeText)
	if statuses[2].Optional {
		t.Fatal("expected tesseract required in text mode")
	}
}

func TestRunAllPassesWithStubbedBinaries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs")
	}
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	langs := strings.ReplaceAll(cfg.OCR.Languages, "+", `\n`)
	script := "#!/bin/sh\nprintf 'List of available languages (2):\\n" + langs + "\\n'\n"
	stub := filepath.Join(testsupport.BaseDir(cfg), "bin", "tesseract")
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write tesseract stub: %v", err)
	}

	results := RunAll(context.Background(), cfg, "")
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, failed: %+v", failed)
	}
	var sawLanguages bool
	for _, r := range results {
		if r.Name == "OCR languages" {
			sawLanguages = true
		}
	}
	if !sawLanguages {
		t.Fatal("expected OCR language check in combined mode")
	}
}

func TestRunAllSkipsLanguagesForImageMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs")
	}
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "ffprobe"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	cfg.OCR.Binary = "clearly-not-present-tesseract"

	results := RunAll(context.Background(), cfg, "image")
	for _, r := range results {
		if r.Name == "OCR languages" {
			t.Fatal("language check should not run for image mode")
		}
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("optional tesseract should not fail image mode: %+v", failed)
	}
}

func TestRunAllRejectsUnknownMode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(context.Background(), cfg, "audio")
	if len(results) != 1 || results[0].Passed {
		t.Fatalf("expected a single failed mode result, got %+v", results)
	}
}

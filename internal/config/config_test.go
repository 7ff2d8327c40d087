package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"slidecap/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SLIDECAP_TESSERACT", "")
	t.Setenv("TESSDATA_PREFIX", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "slidecap", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.HistoryPath() != filepath.Join(tempHome, ".local", "share", "slidecap", "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.Scan.Interval != 1.0 {
		t.Fatalf("unexpected interval: %v", cfg.Scan.Interval)
	}
	if cfg.Scan.Mode != "combined" {
		t.Fatalf("unexpected mode: %q", cfg.Scan.Mode)
	}
	if cfg.Scan.SimilarityThreshold != 0.95 {
		t.Fatalf("unexpected similarity threshold: %v", cfg.Scan.SimilarityThreshold)
	}
	if cfg.Scan.HashThreshold != 10 {
		t.Fatalf("unexpected hash threshold: %d", cfg.Scan.HashThreshold)
	}
	if cfg.OCR.Languages != "chi_sim+eng" {
		t.Fatalf("unexpected OCR languages: %q", cfg.OCR.Languages)
	}
	if cfg.TesseractBinary() != "tesseract" || cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected binaries: %q %q %q", cfg.TesseractBinary(), cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be a directory", dir)
		}
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "custom.toml")
	content := strings.Join([]string{
		"[paths]",
		"log_dir = \"~/logs\"",
		"[scan]",
		"interval = 0.5",
		"mode = \"  IMAGE \"",
		"similarity_threshold = 0.9",
		"hash_threshold = 4",
		"output_dir = \"~/shots\"",
		"[ocr]",
		"languages = \"eng\"",
		"[logging]",
		"format = \"JSON\"",
	}, "\n")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config to be loaded from %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Scan.Mode != "image" {
		t.Fatalf("expected normalized mode image, got %q", cfg.Scan.Mode)
	}
	if cfg.Scan.Interval != 0.5 || cfg.Scan.SimilarityThreshold != 0.9 || cfg.Scan.HashThreshold != 4 {
		t.Fatalf("unexpected scan settings: %+v", cfg.Scan)
	}
	if cfg.Scan.OutputDir != filepath.Join(tempHome, "shots") {
		t.Fatalf("unexpected output dir: %q", cfg.Scan.OutputDir)
	}
	if cfg.OCR.Languages != "eng" {
		t.Fatalf("unexpected OCR languages: %q", cfg.OCR.Languages)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
}

func TestLoadHonoursEnvFallbacks(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SLIDECAP_TESSERACT", "/opt/tesseract/bin/tesseract")
	t.Setenv("TESSDATA_PREFIX", "~/tessdata")

	cfg, _, _, err := config.Load(filepath.Join(tempHome, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TesseractBinary() != "/opt/tesseract/bin/tesseract" {
		t.Fatalf("expected tesseract from env, got %q", cfg.TesseractBinary())
	}
	if cfg.OCR.TessdataDir != filepath.Join(tempHome, "tessdata") {
		t.Fatalf("expected expanded tessdata dir, got %q", cfg.OCR.TessdataDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero interval", func(c *config.Config) { c.Scan.Interval = 0 }, "scan.interval"},
		{"negative interval", func(c *config.Config) { c.Scan.Interval = -1 }, "scan.interval"},
		{"unknown mode", func(c *config.Config) { c.Scan.Mode = "audio" }, "scan.mode"},
		{"similarity above one", func(c *config.Config) { c.Scan.SimilarityThreshold = 1.5 }, "scan.similarity_threshold"},
		{"similarity below zero", func(c *config.Config) { c.Scan.SimilarityThreshold = -0.1 }, "scan.similarity_threshold"},
		{"negative hash threshold", func(c *config.Config) { c.Scan.HashThreshold = -1 }, "scan.hash_threshold"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleRoundTripsThroughLoad(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	target := filepath.Join(tempHome, "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}

	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Scan.Mode != config.Default().Scan.Mode {
		t.Fatalf("expected sample to keep default mode, got %q", cfg.Scan.Mode)
	}
}

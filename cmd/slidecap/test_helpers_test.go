package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"slidecap/internal/config"
	"slidecap/internal/testsupport"
)

// probeJSON describes a 2x2 video at one frame per second.
const probeJSON = `{"streams":[{"index":0,"codec_type":"video","width":2,"height":2,"r_frame_rate":"1/1"}],"format":{"duration":"3.0"}}`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	videoDir   string
}

// setupCLITestEnv writes a config whose ffprobe and ffmpeg are shell stubs.
// The ffmpeg stub emits three identical black 2x2 frames.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs")
	}

	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithMode("image")}, opts...)...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	binDir := filepath.Join(base, "bin")
	cfg.Media.FFprobeBinary = writeScript(t, binDir, "ffprobe", "cat <<'JSON'\n"+probeJSON+"\nJSON")
	cfg.Media.FFmpegBinary = writeScript(t, binDir, "ffmpeg", "head -c 36 /dev/zero")
	cfg.OCR.Binary = filepath.Join(binDir, "missing-tesseract")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		videoDir:   filepath.Join(base, "videos"),
	}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

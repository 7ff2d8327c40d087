package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for logs and persistent state.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// Scan contains the change-detection defaults applied when the CLI does not
// override them.
type Scan struct {
	// Interval is the sampling cadence in seconds. Must be > 0.
	Interval float64 `toml:"interval"`
	// Mode selects the detectors: "text", "image", or "combined".
	Mode string `toml:"mode"`
	// SimilarityThreshold is the structural similarity below which two frames
	// are considered different. Default: 0.95
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	// HashThreshold is the average-hash Hamming distance above which two frames
	// are considered different when similarity cannot be computed. Default: 10
	HashThreshold int `toml:"hash_threshold"`
	// OutputDir overrides the per-video screenshot directory. When empty the
	// directory is placed next to the source video.
	OutputDir string `toml:"output_dir"`
}

// OCR contains configuration for the tesseract text extractor.
type OCR struct {
	Binary         string `toml:"binary"`
	Languages      string `toml:"languages"`
	TessdataDir    string `toml:"tessdata_dir"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Media contains the decoder binaries used to open video streams.
type Media struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// History contains configuration for the scan ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for slidecap.
//
// Configuration sections by subsystem:
//   - Paths: log and state directories
//   - Scan: sampling interval, detection mode, thresholds, output directory
//   - OCR: tesseract binary, languages, and timeout
//   - Media: ffmpeg/ffprobe binaries
//   - History: sqlite scan ledger
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Scan    Scan    `toml:"scan"`
	OCR     OCR     `toml:"ocr"`
	Media   Media   `toml:"media"`
	History History `toml:"history"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("slidecap.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories. A configured
// output directory override is created on a best-effort basis because the
// screenshot emitter creates it again before every write.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Scan.OutputDir) != "" {
		_ = os.MkdirAll(c.Scan.OutputDir, 0o755)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used to decode frames.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Media.FFmpegBinary); bin != "" {
		return bin
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for stream inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Media.FFprobeBinary); bin != "" {
		return bin
	}
	return "ffprobe"
}

// TesseractBinary returns the tesseract executable used for text extraction.
func (c *Config) TesseractBinary() string {
	if bin := strings.TrimSpace(c.OCR.Binary); bin != "" {
		return bin
	}
	return "tesseract"
}

// HistoryPath returns the sqlite database path for the scan ledger.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LogFilePattern matches the daily log files written to the log directory.
const LogFilePattern = "slidecap-*.log"

// LogPath returns today's log file, written alongside console output. One
// file per day keeps logging.retention_days meaningful.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "slidecap-"+time.Now().Format("2006-01-02")+".log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

package scan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"slidecap/internal/imaging"
	"slidecap/internal/logging"
	"slidecap/internal/media/frames"
)

const artifactExt = ".png"

// Artifact is one saved screenshot.
type Artifact struct {
	Sequence   int
	Path       string
	FrameIndex int
	Timestamp  float64
	// Persisted is false when the directory or the file could not be written.
	// The path is reported regardless.
	Persisted bool
	// TextChanged and ImageChanged record which detectors fired.
	TextChanged  bool
	ImageChanged bool
}

// Emitter numbers accepted frames and writes them under one directory.
type Emitter struct {
	dir      string
	basename string
	writer   imaging.Writer
	logger   *slog.Logger
	sequence int
}

// NewEmitter prepares an emitter for one video. Files are named after the
// video base name.
func NewEmitter(videoPath, outputDir string, writer imaging.Writer, logger *slog.Logger) *Emitter {
	if writer == nil {
		writer = imaging.PNGWriter{}
	}
	return &Emitter{
		dir:      outputDir,
		basename: VideoBaseName(videoPath),
		writer:   writer,
		logger:   logging.NewComponentLogger(logger, "emitter"),
	}
}

// Save assigns the next sequence number and writes the frame. Failures are
// logged and leave Persisted false; the scan carries on.
func (e *Emitter) Save(frame frames.Frame) Artifact {
	e.sequence++
	artifact := Artifact{
		Sequence:   e.sequence,
		Path:       filepath.Join(e.dir, FileName(e.basename, e.sequence)),
		FrameIndex: frame.Index,
		Timestamp:  frame.Timestamp(),
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		logging.ErrorWithContext(e.logger, "create screenshot directory failed", "screenshot_dir_failed",
			logging.String("dir", e.dir),
			logging.Int("sequence", artifact.Sequence),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the output directory"),
		)
		return artifact
	}
	if err := e.writer.Write(frame.Image, artifact.Path); err != nil {
		logging.ErrorWithContext(e.logger, "write screenshot failed", "screenshot_write_failed",
			logging.String("path", artifact.Path),
			logging.Int("sequence", artifact.Sequence),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions on the output directory"),
		)
		return artifact
	}
	artifact.Persisted = true
	e.logger.Info("screenshot saved",
		logging.String("path", artifact.Path),
		logging.Int("sequence", artifact.Sequence),
		logging.Int("frame", frame.Index),
		logging.MediaOffset("timestamp", artifact.Timestamp),
	)
	return artifact
}

// Sequence returns the last assigned sequence number.
func (e *Emitter) Sequence() int {
	return e.sequence
}

// Dir returns the output directory.
func (e *Emitter) Dir() string {
	return e.dir
}

// FileName builds "{basename}_frame_{NNN}.png" with at least three digits.
func FileName(basename string, sequence int) string {
	return fmt.Sprintf("%s_frame_%03d%s", basename, sequence, artifactExt)
}

// VideoBaseName returns the file name of path without its extension, in
// Unicode NFC so names built from decomposed paths compare equal.
func VideoBaseName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return norm.NFC.String(base)
}

// DefaultOutputDir places screenshots in "{basename}_screenshots" next to the
// video.
func DefaultOutputDir(videoPath string) string {
	return filepath.Join(filepath.Dir(videoPath), VideoBaseName(videoPath)+"_screenshots")
}

package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os/exec"
	"strings"
	"time"

	"slidecap/internal/config"
	"slidecap/internal/services"
)

// Extractor turns a raster into text.
type Extractor interface {
	Extract(ctx context.Context, img image.Image) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, img image.Image) (string, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img)
}

// Tesseract runs the tesseract binary once per frame.
type Tesseract struct {
	Binary      string
	Languages   string
	TessdataDir string
	// Timeout bounds a single recognition. Zero disables the limit.
	Timeout time.Duration
}

// NewTesseract builds an extractor from the OCR configuration section.
func NewTesseract(cfg *config.Config) *Tesseract {
	if cfg == nil {
		return &Tesseract{Binary: "tesseract", Languages: "eng"}
	}
	return &Tesseract{
		Binary:      cfg.TesseractBinary(),
		Languages:   strings.TrimSpace(cfg.OCR.Languages),
		TessdataDir: strings.TrimSpace(cfg.OCR.TessdataDir),
		Timeout:     time.Duration(cfg.OCR.TimeoutSeconds) * time.Second,
	}
}

// Args returns the tesseract arguments used for every call.
func (t *Tesseract) Args() []string {
	args := []string{"stdin", "stdout"}
	if t.Languages != "" {
		args = append(args, "-l", t.Languages)
	}
	if t.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.TessdataDir)
	}
	return args
}

// Extract recognizes text in img.
func (t *Tesseract) Extract(ctx context.Context, img image.Image) (string, error) {
	if img == nil {
		return "", services.Wrap(services.ErrValidation, "ocr", "encode frame", "nil image", nil)
	}
	var payload bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&payload, img); err != nil {
		return "", services.Wrap(services.ErrValidation, "ocr", "encode frame", "", err)
	}

	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	binary := strings.TrimSpace(t.Binary)
	if binary == "" {
		binary = "tesseract"
	}
	cmd := exec.CommandContext(ctx, binary, t.Args()...)
	cmd.WaitDelay = time.Second
	cmd.Stdin = &payload
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", services.Wrap(services.ErrTimeout, "ocr", "tesseract", "recognition timed out", ctx.Err())
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrExternalTool, "ocr", "tesseract", firstLine(stderr.String()), err)
	}
	return stdout.String(), nil
}

func firstLine(value string) string {
	value = strings.TrimSpace(value)
	if line, _, found := strings.Cut(value, "\n"); found {
		return strings.TrimSpace(line)
	}
	return value
}

package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"slidecap/internal/config"
	"slidecap/internal/deps"
	"slidecap/internal/detect"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external programs a scan in mode needs.
// Tesseract is listed as optional for image-only scans.
func CheckSystemDeps(cfg *config.Config, mode detect.Mode) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required to decode video frames",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required to read the video frame rate",
		},
		{
			Name:        "Tesseract",
			Command:     cfg.TesseractBinary(),
			Description: "Required for text change detection",
			Optional:    !mode.UsesText(),
		},
	}
	return deps.CheckBinaries(requirements)
}

// CheckTesseractLanguages confirms the configured OCR languages are installed.
func CheckTesseractLanguages(ctx context.Context, cfg *config.Config) Result {
	const name = "OCR languages"
	missing, err := deps.MissingLanguages(ctx, cfg.TesseractBinary(), cfg.OCR.Languages, cfg.OCR.TessdataDir)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: fmt.Sprintf("missing traineddata: %s", strings.Join(missing, ", "))}
	}
	return Result{Name: name, Passed: true, Detail: cfg.OCR.Languages}
}

package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// Writer persists a raster at path.
type Writer interface {
	Write(img image.Image, path string) error
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc func(img image.Image, path string) error

// Write calls f.
func (f WriterFunc) Write(img image.Image, path string) error {
	return f(img, path)
}

// PNGWriter writes lossless PNG files. The file appears at path only once
// fully encoded.
type PNGWriter struct {
	Compression png.CompressionLevel
}

// Write encodes img to a temporary sibling file and renames it into place.
// The parent directory must already exist.
func (w PNGWriter) Write(img image.Image, path string) error {
	if img == nil {
		return errors.New("write png: nil image")
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	enc := png.Encoder{CompressionLevel: w.Compression}
	if err := enc.Encode(tmp, img); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("encode png %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close png %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod png %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename png %s: %w", path, err)
	}
	return nil
}

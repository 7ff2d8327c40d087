package detect

import (
	"fmt"
	"math"
	"strings"

	"slidecap/internal/services"
)

// Thresholds tunes the image detector.
type Thresholds struct {
	// Similarity is the SSIM score below which frames differ. Range [0,1].
	Similarity float64
	// HashDistance is the Hamming distance above which frames differ when
	// SSIM is unavailable.
	HashDistance int
}

// DefaultThresholds returns the stock detection thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Similarity: 0.95, HashDistance: 10}
}

// Validate reports out-of-range thresholds.
func (t Thresholds) Validate() error {
	if math.IsNaN(t.Similarity) || t.Similarity < 0 || t.Similarity > 1 {
		return services.Wrap(services.ErrValidation, "detect", "thresholds",
			fmt.Sprintf("similarity threshold %v outside [0,1]", t.Similarity), nil)
	}
	if t.HashDistance < 0 {
		return services.Wrap(services.ErrValidation, "detect", "thresholds",
			fmt.Sprintf("hash threshold %d is negative", t.HashDistance), nil)
	}
	return nil
}

// Mode selects which detectors run.
type Mode string

const (
	ModeText     Mode = "text"
	ModeImage    Mode = "image"
	ModeCombined Mode = "combined"
)

// ParseMode accepts text, image, or combined in any case.
func ParseMode(value string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(value))); mode {
	case ModeText, ModeImage, ModeCombined:
		return mode, nil
	default:
		return "", services.Wrap(services.ErrValidation, "detect", "mode",
			fmt.Sprintf("unknown mode %q (want text, image, or combined)", value), nil)
	}
}

// UsesText reports whether the mode needs the text detector.
func (m Mode) UsesText() bool {
	return m == ModeText || m == ModeCombined
}

// UsesImage reports whether the mode needs the image detector.
func (m Mode) UsesImage() bool {
	return m == ModeImage || m == ModeCombined
}

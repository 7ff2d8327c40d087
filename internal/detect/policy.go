package detect

import (
	"context"
	"log/slog"

	"slidecap/internal/media/frames"
	"slidecap/internal/ocr"
	"slidecap/internal/services"
)

// Decision is the policy outcome for one frame.
type Decision struct {
	Changed bool
	// Text and Image record what each active detector reported.
	Text  bool
	Image bool
}

// Policy combines detectors according to a Mode.
type Policy struct {
	mode  Mode
	text  Detector
	image Detector
}

// NewPolicy wires the detectors a mode needs. Detectors the mode does not
// use may be nil.
func NewPolicy(mode Mode, text, image Detector) (*Policy, error) {
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	if mode.UsesText() && text == nil {
		return nil, services.Wrap(services.ErrConfiguration, "detect", "policy", "mode "+string(mode)+" needs a text detector", nil)
	}
	if mode.UsesImage() && image == nil {
		return nil, services.Wrap(services.ErrConfiguration, "detect", "policy", "mode "+string(mode)+" needs an image detector", nil)
	}
	return &Policy{mode: mode, text: text, image: image}, nil
}

// Build creates the stock detectors for mode. The extractor is only
// required when the mode reads text.
func Build(mode Mode, thresholds Thresholds, extractor ocr.Extractor, logger *slog.Logger) (*Policy, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	var text, image Detector
	if mode.UsesText() {
		if extractor == nil {
			return nil, services.Wrap(services.ErrConfiguration, "detect", "policy", "text detection needs an OCR extractor", nil)
		}
		text = NewTextDetector(extractor, logger)
	}
	if mode.UsesImage() {
		image = NewImageDetector(thresholds, logger)
	}
	return NewPolicy(mode, text, image)
}

// Mode returns the configured mode.
func (p *Policy) Mode() Mode {
	return p.mode
}

// Evaluate runs the active detectors on frame. Combined mode always runs
// both detectors before combining their results.
func (p *Policy) Evaluate(ctx context.Context, frame frames.Frame) Decision {
	var d Decision
	switch p.mode {
	case ModeText:
		d.Text = p.text.Check(ctx, frame)
	case ModeImage:
		d.Image = p.image.Check(ctx, frame)
	case ModeCombined:
		d.Text = p.text.Check(ctx, frame)
		d.Image = p.image.Check(ctx, frame)
	}
	d.Changed = d.Text || d.Image
	return d
}

// Warm reports whether every active detector has left the cold state.
func (p *Policy) Warm() bool {
	if p.text != nil && p.mode.UsesText() && !p.text.Warm() {
		return false
	}
	if p.image != nil && p.mode.UsesImage() && !p.image.Warm() {
		return false
	}
	return true
}

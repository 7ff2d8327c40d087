package detect

import (
	"context"
	"log/slog"
	"strings"

	"slidecap/internal/logging"
	"slidecap/internal/media/frames"
	"slidecap/internal/ocr"
)

// Detector reports whether a frame differs from the last accepted one.
type Detector interface {
	Check(ctx context.Context, frame frames.Frame) bool
	// Warm reports whether the detector holds a snapshot.
	Warm() bool
}

type textSnapshot struct {
	text    string
	present bool
}

// advance replaces the snapshot when current differs and reports whether it did.
func (s *textSnapshot) advance(current string) bool {
	if s.present && s.text == current {
		return false
	}
	s.text = current
	s.present = true
	return true
}

// TextDetector flags frames whose recognized text changed.
type TextDetector struct {
	extractor ocr.Extractor
	logger    *slog.Logger
	snapshot  textSnapshot
}

// NewTextDetector wraps an OCR extractor.
func NewTextDetector(extractor ocr.Extractor, logger *slog.Logger) *TextDetector {
	return &TextDetector{
		extractor: extractor,
		logger:    logging.NewComponentLogger(logger, "text-detector"),
	}
}

// Check extracts and trims the frame text. Extraction failures are logged
// and read as empty text, which counts as a change when the previous text
// was not empty.
func (d *TextDetector) Check(ctx context.Context, frame frames.Frame) bool {
	current, err := d.extractor.Extract(ctx, frame.Image)
	if err != nil {
		logging.WarnWithContext(d.logger, "text extraction failed; using empty text", "ocr_failed",
			logging.Int("frame", frame.Index),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run `slidecap check` to verify tesseract and its language data"),
			logging.String(logging.FieldImpact, "frame may be reported as a text change"),
		)
		current = ""
	}
	current = strings.TrimSpace(current)

	cold := !d.snapshot.present
	changed := d.snapshot.advance(current)
	if d.logger.Enabled(ctx, slog.LevelDebug) {
		reason := "text unchanged"
		switch {
		case cold:
			reason = "first sampled frame"
		case changed:
			reason = "text differs from snapshot"
		}
		attrs := append(logging.DecisionAttrs("text_change", resultLabel(changed), reason),
			logging.Int("frame", frame.Index),
			logging.Int("text_runes", len([]rune(current))),
		)
		d.logger.Debug("text decision", logging.Args(attrs...)...)
	}
	return changed
}

// Warm reports whether a text snapshot exists.
func (d *TextDetector) Warm() bool {
	return d.snapshot.present
}

// Text returns the current snapshot text.
func (d *TextDetector) Text() string {
	return d.snapshot.text
}

func resultLabel(changed bool) string {
	if changed {
		return "changed"
	}
	return "unchanged"
}

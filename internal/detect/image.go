package detect

import (
	"context"
	"image"
	"log/slog"

	"slidecap/internal/imaging"
	"slidecap/internal/logging"
	"slidecap/internal/media/frames"
)

type imageSnapshot struct {
	gray    *image.Gray
	hash    imaging.Hash
	present bool
}

func (s *imageSnapshot) store(gray *image.Gray, hash imaging.Hash) {
	s.gray = gray
	s.hash = hash
	s.present = true
}

// ImageDetector flags frames that look different from the last accepted one.
type ImageDetector struct {
	thresholds Thresholds
	logger     *slog.Logger
	snapshot   imageSnapshot
}

// NewImageDetector builds an image detector with the given thresholds.
func NewImageDetector(thresholds Thresholds, logger *slog.Logger) *ImageDetector {
	return &ImageDetector{
		thresholds: thresholds,
		logger:     logging.NewComponentLogger(logger, "image-detector"),
	}
}

// Check compares the frame to the snapshot by SSIM, or by average-hash
// distance when SSIM fails. The snapshot, hash included, is replaced
// whenever either comparison reports a change. A frame without a raster
// counts as a change only while no snapshot is held.
func (d *ImageDetector) Check(ctx context.Context, frame frames.Frame) bool {
	gray := imaging.Grayscale(frame.Image)
	if gray == nil {
		// Nothing to compare against or store; a cold detector still fires.
		cold := !d.snapshot.present
		logging.WarnWithContext(d.logger, "frame has no raster; skipping image comparison", "empty_frame",
			logging.Int("frame", frame.Index),
			logging.Bool("changed", cold),
			logging.String(logging.FieldImpact, "snapshot left unchanged for this frame"),
		)
		return cold
	}

	if !d.snapshot.present {
		d.snapshot.store(gray, imaging.AverageHash(gray))
		d.debug(ctx, frame, true, "first sampled frame")
		return true
	}

	score, err := imaging.SSIM(d.snapshot.gray, gray)
	if err == nil {
		changed := score < d.thresholds.Similarity
		if changed {
			d.snapshot.store(gray, imaging.AverageHash(gray))
		}
		d.debug(ctx, frame, changed, "ssim", logging.Float64("ssim", score))
		return changed
	}

	hash := imaging.AverageHash(gray)
	distance := d.snapshot.hash.Distance(hash)
	changed := distance > d.thresholds.HashDistance
	logging.WarnWithContext(d.logger, "similarity unavailable; compared average hashes", "ssim_fallback",
		logging.Int("frame", frame.Index),
		logging.Error(err),
		logging.Int("hash_distance", distance),
		logging.Int("hash_threshold", d.thresholds.HashDistance),
		logging.Bool("changed", changed),
		logging.String(logging.FieldErrorHint, "frames changed size or are smaller than 7x7"),
		logging.String(logging.FieldImpact, "coarser change detection for this frame"),
	)
	if changed {
		d.snapshot.store(gray, hash)
	}
	return changed
}

// Warm reports whether an image snapshot exists.
func (d *ImageDetector) Warm() bool {
	return d.snapshot.present
}

func (d *ImageDetector) debug(ctx context.Context, frame frames.Frame, changed bool, reason string, extra ...logging.Attr) {
	if !d.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs := append(logging.DecisionAttrs("image_change", resultLabel(changed), reason), logging.Int("frame", frame.Index))
	attrs = append(attrs, extra...)
	d.logger.Debug("image decision", logging.Args(attrs...)...)
}

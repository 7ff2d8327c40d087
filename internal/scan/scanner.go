package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"slidecap/internal/detect"
	"slidecap/internal/imaging"
	"slidecap/internal/logging"
	"slidecap/internal/media/frames"
	"slidecap/internal/ocr"
	"slidecap/internal/services"
)

// State is the lifecycle of one scan session.
type State string

const (
	StateNotStarted State = "not_started"
	StateScanning   State = "scanning"
	StateDone       State = "done"
)

// Options are the per-scan settings.
type Options struct {
	// Interval is the sampling cadence in seconds.
	Interval   float64
	Mode       detect.Mode
	Thresholds detect.Thresholds
	// OutputDir overrides DefaultOutputDir for every video.
	OutputDir string
}

// Dependencies are the collaborators a Scanner drives.
type Dependencies struct {
	Opener frames.Opener
	// OCR is required for text and combined modes.
	OCR    ocr.Extractor
	Writer imaging.Writer
	Logger *slog.Logger
	// Policy builds the detectors for each session from a session-scoped
	// logger. Defaults to detect.Build.
	Policy func(logger *slog.Logger) (*detect.Policy, error)
}

// Result is the outcome of one scan session.
type Result struct {
	SessionID     string
	VideoPath     string
	OutputDir     string
	Mode          detect.Mode
	FrameRate     float64
	FrameInterval int
	Decoded       int
	Sampled       int
	Artifacts     []Artifact
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Paths returns the artifact paths in detection order.
func (r Result) Paths() []string {
	paths := make([]string, 0, len(r.Artifacts))
	for _, a := range r.Artifacts {
		paths = append(paths, a.Path)
	}
	return paths
}

// Scanner runs scan sessions one at a time.
type Scanner struct {
	opts      Options
	opener    frames.Opener
	writer    imaging.Writer
	base      *slog.Logger
	logger    *slog.Logger
	newPolicy func(logger *slog.Logger) (*detect.Policy, error)
	state     State
}

// NewScanner validates the options and wires the collaborators.
func NewScanner(opts Options, deps Dependencies) (*Scanner, error) {
	if _, err := FrameInterval(1, opts.Interval); err != nil {
		return nil, err
	}
	mode, err := detect.ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	opts.Mode = mode
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if deps.Opener == nil {
		return nil, services.Wrap(services.ErrConfiguration, "scan", "new scanner", "frame opener is required", nil)
	}
	base := deps.Logger
	if base == nil {
		base = logging.NewNop()
	}
	newPolicy := deps.Policy
	if newPolicy == nil {
		if mode.UsesText() && deps.OCR == nil {
			return nil, services.Wrap(services.ErrConfiguration, "scan", "new scanner", fmt.Sprintf("mode %s needs an OCR extractor", mode), nil)
		}
		newPolicy = func(logger *slog.Logger) (*detect.Policy, error) {
			return detect.Build(opts.Mode, opts.Thresholds, deps.OCR, logger)
		}
	}
	return &Scanner{
		opts:      opts,
		opener:    deps.Opener,
		writer:    deps.Writer,
		base:      base,
		logger:    logging.NewComponentLogger(base, "scanner"),
		newPolicy: newPolicy,
		state:     StateNotStarted,
	}, nil
}

// State reports the state of the most recent session.
func (s *Scanner) State() State {
	return s.state
}

// OutputDirFor resolves where screenshots of videoPath are written.
func (s *Scanner) OutputDirFor(videoPath string) string {
	if dir := strings.TrimSpace(s.opts.OutputDir); dir != "" {
		return dir
	}
	return DefaultOutputDir(videoPath)
}

// Scan runs one session over videoPath. A video that cannot be opened
// returns an empty result and a *frames.StreamOpenError. Cancelling ctx
// stops between frames and returns the artifacts saved so far with the
// context error.
func (s *Scanner) Scan(ctx context.Context, videoPath string) (Result, error) {
	s.state = StateNotStarted
	result := Result{
		SessionID: uuid.NewString(),
		VideoPath: videoPath,
		OutputDir: s.OutputDirFor(videoPath),
		Mode:      s.opts.Mode,
		StartedAt: time.Now(),
	}
	err := s.run(ctx, &result)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		result.Artifacts = nil
	}
	result.FinishedAt = time.Now()
	s.state = StateDone
	return result, err
}

func (s *Scanner) run(ctx context.Context, result *Result) error {
	videoPath := result.VideoPath
	ctx = services.WithSessionID(ctx, result.SessionID)
	ctx = services.WithVideo(ctx, VideoBaseName(videoPath))
	logger := logging.WithContext(ctx, s.logger)
	sessionBase := logging.WithContext(ctx, s.base)

	policy, err := s.newPolicy(sessionBase)
	if err != nil {
		return err
	}

	stream, err := s.opener.Open(ctx, videoPath)
	if err != nil {
		var openErr *frames.StreamOpenError
		if !errors.As(err, &openErr) {
			err = &frames.StreamOpenError{Path: videoPath, Err: err}
		}
		logging.ErrorWithContext(logger, "open video failed", "stream_open_failed",
			logging.String("path", videoPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "confirm the file is a readable video and ffmpeg can decode it"),
		)
		return err
	}
	defer func() {
		if closeErr := stream.Close(); closeErr != nil {
			logging.WarnWithContext(logger, "close video stream failed", "stream_close_failed",
				logging.Error(closeErr),
				logging.String(logging.FieldImpact, "the end of the video may not have been scanned"),
			)
		}
	}()

	sampler, err := NewSampler(stream, s.opts.Interval)
	if err != nil {
		err = &frames.StreamOpenError{Path: videoPath, Err: err}
		logging.ErrorWithContext(logger, "video has no usable frame rate", "stream_open_failed",
			logging.Float64("fps", stream.FrameRate()),
			logging.Error(err),
		)
		return err
	}
	result.FrameRate = stream.FrameRate()
	result.FrameInterval = sampler.Every()

	lock, err := lockOutputDir(result.OutputDir)
	switch {
	case errors.Is(err, ErrOutputLocked):
		logging.WarnWithContext(logger, "output directory busy; continuing unlocked", "output_locked",
			logging.String("dir", result.OutputDir),
			logging.String(logging.FieldErrorHint, "wait for the other scan to finish or pick another --output-dir"),
			logging.String(logging.FieldImpact, "screenshots with the same name may be overwritten by the other scan"),
		)
	case err != nil:
		logging.WarnWithContext(logger, "could not lock output directory; continuing unlocked", "output_lock_failed",
			logging.String("dir", result.OutputDir),
			logging.Error(err),
			logging.String(logging.FieldImpact, "a concurrent scan could overwrite screenshots"),
		)
	}
	defer func() { _ = lock.release() }()

	s.state = StateScanning
	logger.Info("scan started",
		logging.String("path", videoPath),
		logging.String("mode", string(s.opts.Mode)),
		logging.Float64("fps", result.FrameRate),
		logging.Int("frame_interval", result.FrameInterval),
		logging.String("output_dir", result.OutputDir),
	)

	emitter := NewEmitter(videoPath, result.OutputDir, s.writer, sessionBase)
	for {
		if err := ctx.Err(); err != nil {
			result.Decoded = sampler.Decoded()
			logger.Info("scan cancelled", logging.Int("screenshots", len(result.Artifacts)))
			return err
		}
		frame, err := sampler.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var openErr *frames.StreamOpenError
		if errors.As(err, &openErr) {
			logging.ErrorWithContext(logger, "decoder failed before the first frame", "stream_open_failed",
				logging.String("path", videoPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "confirm the file is a readable video and ffmpeg can decode it"),
			)
			return err
		}
		if err != nil {
			logging.WarnWithContext(logger, "frame decode failed; ending scan early", "frame_decode_failed",
				logging.Int("decoded", sampler.Decoded()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "later frames were not scanned"),
			)
			break
		}
		result.Sampled++

		decision := policy.Evaluate(ctx, frame)
		if ctx.Err() != nil {
			// Detector output is not trustworthy once the context is gone.
			continue
		}
		if !decision.Changed {
			continue
		}
		artifact := emitter.Save(frame)
		artifact.TextChanged = decision.Text
		artifact.ImageChanged = decision.Image
		result.Artifacts = append(result.Artifacts, artifact)
	}

	result.Decoded = sampler.Decoded()
	logger.Info("scan finished",
		logging.Int("decoded", result.Decoded),
		logging.Int("sampled", result.Sampled),
		logging.Int("screenshots", len(result.Artifacts)),
		logging.Int("unsaved", countUnsaved(result.Artifacts)),
	)
	return nil
}

func countUnsaved(artifacts []Artifact) int {
	n := 0
	for _, a := range artifacts {
		if !a.Persisted {
			n++
		}
	}
	return n
}

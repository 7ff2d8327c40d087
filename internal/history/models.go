package history

import "time"

// Status represents the terminal state recorded for a scan.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusSkipped   Status = "skipped"
)

// Scan is one recorded scan session.
type Scan struct {
	ID                  string
	VideoPath           string
	OutputDir           string
	Mode                string
	Interval            float64
	SimilarityThreshold float64
	HashThreshold       int
	Status              Status
	ErrorMessage        string
	FrameRate           float64
	DecodedFrames       int
	SampledFrames       int
	StartedAt           time.Time
	FinishedAt          time.Time

	// ScreenshotCount is populated by read queries only.
	ScreenshotCount int
}

// Duration reports how long the scan ran.
func (s Scan) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.Before(s.StartedAt) {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Screenshot is one artifact written during a scan.
type Screenshot struct {
	ScanID           string
	Sequence         int
	FrameIndex       int
	TimestampSeconds float64
	Path             string
	Persisted        bool
	TextChanged      bool
	ImageChanged     bool
}

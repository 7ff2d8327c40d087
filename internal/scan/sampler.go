package scan

import (
	"fmt"
	"math"

	"slidecap/internal/media/frames"
	"slidecap/internal/services"
)

// FrameInterval converts a sampling interval in seconds into a frame stride:
// max(1, round(fps*interval)).
func FrameInterval(fps, interval float64) (int, error) {
	if math.IsNaN(interval) || math.IsInf(interval, 0) || interval <= 0 {
		return 0, services.Wrap(services.ErrValidation, "scan", "sampling interval",
			fmt.Sprintf("interval %v must be a positive number of seconds", interval), nil)
	}
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return 0, fmt.Errorf("invalid frame rate %v", fps)
	}
	stride := math.Round(fps * interval)
	if stride < 1 {
		return 1, nil
	}
	if stride > math.MaxInt32 {
		return math.MaxInt32, nil
	}
	return int(stride), nil
}

// Sampler yields the frames of a stream whose index is a multiple of the
// frame interval.
type Sampler struct {
	stream  frames.Stream
	every   int
	decoded int
}

// NewSampler wraps stream with the stride derived from interval.
func NewSampler(stream frames.Stream, interval float64) (*Sampler, error) {
	every, err := FrameInterval(stream.FrameRate(), interval)
	if err != nil {
		return nil, err
	}
	return &Sampler{stream: stream, every: every}, nil
}

// Next returns the next sampled frame, or io.EOF when the stream ends.
func (s *Sampler) Next() (frames.Frame, error) {
	for {
		frame, err := s.stream.Next()
		if err != nil {
			return frames.Frame{}, err
		}
		s.decoded++
		if frame.Index%s.every == 0 {
			return frame, nil
		}
	}
}

// Every returns the frame stride.
func (s *Sampler) Every() int {
	return s.every
}

// Decoded returns how many frames have been read from the stream.
func (s *Sampler) Decoded() int {
	return s.decoded
}

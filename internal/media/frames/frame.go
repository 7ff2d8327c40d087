package frames

import (
	"context"
	"fmt"
	"image"
	"io"
)

// Frame is one decoded raster from a video.
type Frame struct {
	Index int
	Image image.Image
	FPS   float64
}

// Timestamp returns the frame position in seconds.
func (f Frame) Timestamp() float64 {
	if f.FPS <= 0 {
		return 0
	}
	return float64(f.Index) / f.FPS
}

// Stream yields frames in decode order. Next returns io.EOF once the
// stream is exhausted.
type Stream interface {
	FrameRate() float64
	Next() (Frame, error)
	Close() error
}

// Opener opens a frame stream for a video path.
type Opener interface {
	Open(ctx context.Context, path string) (Stream, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, path string) (Stream, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, path string) (Stream, error) {
	return f(ctx, path)
}

// StreamOpenError reports that a video could not be opened for decoding.
type StreamOpenError struct {
	Path string
	Err  error
}

func (e *StreamOpenError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("open stream %s: %v", e.Path, e.Err)
}

func (e *StreamOpenError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SliceStream serves frames held in memory.
type SliceStream struct {
	fps    float64
	images []image.Image
	next   int
	closed bool
}

// NewSliceStream builds a stream over images at the given frame rate.
func NewSliceStream(fps float64, images ...image.Image) *SliceStream {
	return &SliceStream{fps: fps, images: images}
}

// FrameRate reports the configured frame rate.
func (s *SliceStream) FrameRate() float64 {
	return s.fps
}

// Next returns the next frame or io.EOF.
func (s *SliceStream) Next() (Frame, error) {
	if s.closed {
		return Frame{}, io.ErrClosedPipe
	}
	if s.next >= len(s.images) {
		return Frame{}, io.EOF
	}
	frame := Frame{Index: s.next, Image: s.images[s.next], FPS: s.fps}
	s.next++
	return frame, nil
}

// Close marks the stream closed.
func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *SliceStream) Closed() bool {
	return s.closed
}

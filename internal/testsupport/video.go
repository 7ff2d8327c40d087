package testsupport

import (
	"context"
	"image"
	"image/color"
	"sync"

	"slidecap/internal/media/frames"
	"slidecap/internal/ocr"
)

// Segment describes a run of identical frames in a synthetic video.
type Segment struct {
	Frames int
	Color  color.Color
	Text   string
}

// Video is a synthetic frame sequence whose on-screen text is known, so an
// OCR stand-in can report it without running tesseract.
type Video struct {
	FPS    float64
	Images []image.Image
	text   map[image.Image]string
}

// BuildVideo renders segments into frames of the given size. Frames within a
// segment share one raster.
func BuildVideo(width, height int, fps float64, segments ...Segment) *Video {
	v := &Video{FPS: fps, text: make(map[image.Image]string)}
	for _, seg := range segments {
		img := SolidImage(width, height, seg.Color)
		v.text[img] = seg.Text
		for i := 0; i < seg.Frames; i++ {
			v.Images = append(v.Images, img)
		}
	}
	return v
}

// SolidImage returns an RGBA raster filled with c. A nil color yields black.
func SolidImage(width, height int, c color.Color) *image.RGBA {
	if c == nil {
		c = color.Black
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	r, g, b, a := c.RGBA()
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(r >> 8)
		img.Pix[i+1] = uint8(g >> 8)
		img.Pix[i+2] = uint8(b >> 8)
		img.Pix[i+3] = uint8(a >> 8)
	}
	return img
}

// Stream returns a fresh stream over the video frames.
func (v *Video) Stream() *frames.SliceStream {
	return frames.NewSliceStream(v.FPS, v.Images...)
}

// Opener returns an opener that serves the video for any path. Every stream
// it hands out is recorded so tests can check it was closed.
func (v *Video) Opener() *RecordingOpener {
	return &RecordingOpener{video: v}
}

// OCR returns an extractor reporting the segment text of each frame.
func (v *Video) OCR() ocr.Extractor {
	return ocr.ExtractorFunc(func(_ context.Context, img image.Image) (string, error) {
		return v.text[img], nil
	})
}

// RecordingOpener serves a synthetic video and remembers the streams opened.
type RecordingOpener struct {
	video *Video

	mu      sync.Mutex
	Streams []*frames.SliceStream
	Paths   []string
}

// Open implements frames.Opener.
func (o *RecordingOpener) Open(_ context.Context, path string) (frames.Stream, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	stream := o.video.Stream()
	o.Streams = append(o.Streams, stream)
	o.Paths = append(o.Paths, path)
	return stream, nil
}

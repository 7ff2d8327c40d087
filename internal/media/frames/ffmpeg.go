package frames

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"slidecap/internal/logging"
	"slidecap/internal/media/ffprobe"
)

// stderrLimit caps how much ffmpeg diagnostic output is retained.
const stderrLimit = 16 * 1024

// FFmpeg opens videos by piping raw RGB24 frames out of ffmpeg.
type FFmpeg struct {
	FFmpegBinary  string
	FFprobeBinary string
	Logger        *slog.Logger
}

// Open probes the video and starts the decoder. Probe and start failures are
// returned as *StreamOpenError. A decoder that exits with an error before
// producing any frame surfaces the same way from the first Next call.
func (f FFmpeg) Open(ctx context.Context, path string) (Stream, error) {
	logger := f.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	probe, err := ffprobe.Inspect(ctx, f.FFprobeBinary, path)
	if err != nil {
		return nil, &StreamOpenError{Path: path, Err: err}
	}
	video, err := probe.FirstVideoStream()
	if err != nil {
		return nil, &StreamOpenError{Path: path, Err: err}
	}
	fps := video.FrameRate()
	if fps <= 0 {
		return nil, &StreamOpenError{Path: path, Err: fmt.Errorf("unknown frame rate (r_frame_rate=%q avg_frame_rate=%q)", video.RFrameRate, video.AvgFrameRate)}
	}
	if video.Width <= 0 || video.Height <= 0 {
		return nil, &StreamOpenError{Path: path, Err: fmt.Errorf("invalid dimensions %dx%d", video.Width, video.Height)}
	}

	binary := strings.TrimSpace(f.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	args := []string{
		"-v", "error",
		"-nostdin",
		"-noautorotate",
		"-i", path,
		"-map", fmt.Sprintf("0:%d", video.Index),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &StreamOpenError{Path: path, Err: err}
	}
	stderr := &limitedBuffer{limit: stderrLimit}
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, &StreamOpenError{Path: path, Err: fmt.Errorf("start ffmpeg: %w", err)}
	}

	logger.Debug("ffmpeg decoder started",
		logging.String("path", path),
		logging.Int("width", video.Width),
		logging.Int("height", video.Height),
		logging.Float64("fps", fps),
		logging.Int("frames_reported", video.FrameCount()),
	)

	return &ffmpegStream{
		cmd:    cmd,
		reader: bufio.NewReaderSize(stdout, video.Width*video.Height*3),
		stderr: stderr,
		path:   path,
		width:  video.Width,
		height: video.Height,
		fps:    fps,
		buf:    make([]byte, video.Width*video.Height*3),
	}, nil
}

type ffmpegStream struct {
	cmd     *exec.Cmd
	reader  *bufio.Reader
	stderr  *limitedBuffer
	path    string
	width   int
	height  int
	fps     float64
	buf     []byte
	index   int
	drained bool
	closed  bool
	waited  bool
	waitErr error
}

func (s *ffmpegStream) FrameRate() float64 {
	return s.fps
}

func (s *ffmpegStream) Next() (Frame, error) {
	if s.closed {
		return Frame{}, io.ErrClosedPipe
	}
	if s.drained {
		return Frame{}, io.EOF
	}
	if _, err := io.ReadFull(s.reader, s.buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// A truncated trailing frame is dropped.
			s.drained = true
			if s.index == 0 {
				if err := s.wait(); err != nil {
					return Frame{}, &StreamOpenError{Path: s.path, Err: err}
				}
			}
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("read frame %d: %w", s.index, err)
	}
	frame := Frame{Index: s.index, Image: rgb24ToRGBA(s.buf, s.width, s.height), FPS: s.fps}
	s.index++
	return frame, nil
}

// Close stops the decoder. A decoder that exited with an error after the
// stream was drained is reported; killing an unfinished decoder is not.
func (s *ffmpegStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.waited {
		// Reaped by Next.
		return nil
	}
	if !s.drained && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	err := s.wait()
	if s.drained {
		return err
	}
	return nil
}

// wait reaps the decoder once and folds its stderr into the exit error.
func (s *ffmpegStream) wait() error {
	if s.waited {
		return s.waitErr
	}
	s.waited = true
	err := s.cmd.Wait()
	if err == nil {
		return nil
	}
	if detail := strings.TrimSpace(s.stderr.String()); detail != "" {
		s.waitErr = fmt.Errorf("ffmpeg decode %s: %w: %s", s.path, err, detail)
	} else {
		s.waitErr = fmt.Errorf("ffmpeg decode %s: %w", s.path, err)
	}
	return s.waitErr
}

func rgb24ToRGBA(buf []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	src := 0
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			row[x*4] = buf[src]
			row[x*4+1] = buf[src+1]
			row[x*4+2] = buf[src+2]
			row[x*4+3] = 0xff
			src += 3
		}
	}
	return img
}

type limitedBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

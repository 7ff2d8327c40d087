package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoLogs is returned when the log directory holds no matching files.
var ErrNoLogs = errors.New("no log files found")

const (
	defaultPoll   = 250 * time.Millisecond
	maxLineLength = 1024 * 1024
)

// Latest returns the most recently modified file in dir matching pattern.
func Latest(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("match log files: %w", err)
	}
	var (
		newest  string
		newestT time.Time
	)
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if newest == "" || info.ModTime().After(newestT) {
			newest, newestT = path, info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w in %s", ErrNoLogs, dir)
	}
	return newest, nil
}

// Filter keeps a line when it returns true.
type Filter func(line string) bool

// SessionFilter keeps lines mentioning a scan session ID or ID prefix.
// An empty id keeps everything.
func SessionFilter(id string) Filter {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return func(line string) bool {
		return strings.Contains(line, id)
	}
}

// Tailer reads a log file from the end.
type Tailer struct {
	path   string
	filter Filter
	offset int64
	// Poll is how often Follow checks for new lines.
	Poll time.Duration
}

// NewTailer prepares to read path. filter may be nil.
func NewTailer(path string, filter Filter) *Tailer {
	return &Tailer{path: path, filter: filter, Poll: defaultPoll}
}

func (t *Tailer) keep(line string) bool {
	return t.filter == nil || t.filter(line)
}

// Last returns up to n of the final matching lines and positions the tailer
// at end of file. n <= 0 only seeks to the end.
func (t *Tailer) Last(n int) ([]string, error) {
	file, err := os.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	var ring []string
	if n > 0 {
		ring = make([]string, 0, n)
	}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		if n <= 0 {
			continue
		}
		line := scanner.Text()
		if !t.keep(line) {
			continue
		}
		if len(ring) == n {
			copy(ring, ring[1:])
			ring = ring[:n-1]
		}
		ring = append(ring, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	t.offset, err = file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("determine log offset: %w", err)
	}
	return ring, nil
}

// Follow emits complete lines appended after the current offset until ctx
// is done. A file that shrinks is read again from the start.
func (t *Tailer) Follow(ctx context.Context, emit func(line string)) error {
	poll := t.Poll
	if poll <= 0 {
		poll = defaultPoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if err := t.drain(emit); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// drain reads whole lines past offset. A trailing partial line is left for
// the next poll.
func (t *Tailer) drain(emit func(string)) error {
	file, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < t.offset {
		t.offset = 0
	}
	if _, err := file.Seek(t.offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read log file: %w", err)
		}
		t.offset += int64(len(line))
		line = strings.TrimRight(line, "\r\n")
		if t.keep(line) {
			emit(line)
		}
	}
}

package scan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created inside each output directory while a scan writes to it.
const LockFileName = ".slidecap.lock"

// ErrOutputLocked reports that another scan holds the output directory.
var ErrOutputLocked = errors.New("output directory is in use by another scan")

type outputLock struct {
	path string
	lock *flock.Flock
}

// lockOutputDir creates dir if needed and takes its lock without waiting.
func lockOutputDir(dir string) (*outputLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, dir)
	}
	return &outputLock{path: path, lock: lock}, nil
}

func (l *outputLock) release() error {
	if l == nil {
		return nil
	}
	return l.lock.Unlock()
}

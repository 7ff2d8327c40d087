package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"slidecap/internal/logging"
	"slidecap/internal/services"
)

// SupportedExtensions lists the video containers accepted for scanning.
var SupportedExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".flv", ".wmv"}

// ValidateVideo checks that path names an existing regular file with a
// supported extension.
func ValidateVideo(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return services.Wrap(services.ErrNotFound, "scan", "validate video", "file does not exist: "+path, nil)
		}
		return services.Wrap(services.ErrValidation, "scan", "validate video", path, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "scan", "validate video", "path is a directory: "+path, nil)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(SupportedExtensions, ext) {
		return services.Wrap(services.ErrValidation, "scan", "validate video",
			fmt.Sprintf("unsupported extension %q (supported: %s)", ext, strings.Join(SupportedExtensions, " ")), nil)
	}
	return nil
}

// BatchItem is the outcome for one video of a batch.
type BatchItem struct {
	VideoPath string
	Result    Result
	Err       error
}

// Succeeded reports whether the video scanned without error.
func (b BatchItem) Succeeded() bool {
	return b.Err == nil
}

// BatchSummary collects the outcomes of ScanAll in input order.
type BatchSummary struct {
	Items []BatchItem
}

// Succeeded counts videos that scanned without error.
func (s BatchSummary) Succeeded() int {
	n := 0
	for _, item := range s.Items {
		if item.Succeeded() {
			n++
		}
	}
	return n
}

// Total returns the number of videos attempted.
func (s BatchSummary) Total() int {
	return len(s.Items)
}

// Screenshots counts artifacts across the batch.
func (s BatchSummary) Screenshots() int {
	n := 0
	for _, item := range s.Items {
		n += len(item.Result.Artifacts)
	}
	return n
}

// ScanAll scans videos sequentially. Missing files, unsupported extensions,
// and open failures are recorded on their item and the batch moves on.
// Cancellation stops the batch after the current video. onDone, when
// non-nil, is called after each video.
func (s *Scanner) ScanAll(ctx context.Context, videos []string, onDone func(BatchItem)) BatchSummary {
	summary := BatchSummary{Items: make([]BatchItem, 0, len(videos))}
	for i, video := range videos {
		if ctx.Err() != nil {
			break
		}
		item := BatchItem{VideoPath: video}
		if err := ValidateVideo(video); err != nil {
			item.Err = err
			logging.WarnWithContext(s.logger, "skipping video", "video_skipped",
				logging.String("path", video),
				logging.Error(err),
				logging.String(logging.FieldImpact, "no screenshots for this video"),
			)
		} else {
			item.Result, item.Err = s.Scan(ctx, video)
		}
		summary.Items = append(summary.Items, item)
		if onDone != nil {
			onDone(item)
		}
		s.logger.Debug("batch progress",
			logging.Int("done", i+1),
			logging.Int("total", len(videos)),
		)
	}
	s.logger.Info("batch finished",
		logging.Int("succeeded", summary.Succeeded()),
		logging.Int("total", summary.Total()),
		logging.Int("screenshots", summary.Screenshots()),
	)
	return summary
}

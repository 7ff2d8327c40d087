package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"slidecap/internal/history"
	"slidecap/internal/logging"
	"slidecap/internal/scan"
	"slidecap/internal/services"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// screenshotReport is shared by `scan --json` and `history show --json`.
type screenshotReport struct {
	Sequence     int     `json:"sequence"`
	Path         string  `json:"path"`
	FrameIndex   int     `json:"frame_index"`
	Timestamp    float64 `json:"timestamp_seconds"`
	Offset       string  `json:"offset"`
	Persisted    bool    `json:"persisted"`
	TextChanged  bool    `json:"text_changed"`
	ImageChanged bool    `json:"image_changed"`
}

func artifactReport(a scan.Artifact) screenshotReport {
	return screenshotReport{
		Sequence:     a.Sequence,
		Path:         a.Path,
		FrameIndex:   a.FrameIndex,
		Timestamp:    a.Timestamp,
		Offset:       logging.FormatMediaOffset(a.Timestamp),
		Persisted:    a.Persisted,
		TextChanged:  a.TextChanged,
		ImageChanged: a.ImageChanged,
	}
}

func recordedShotReport(shot history.Screenshot) screenshotReport {
	return screenshotReport{
		Sequence:     shot.Sequence,
		Path:         shot.Path,
		FrameIndex:   shot.FrameIndex,
		Timestamp:    shot.TimestampSeconds,
		Offset:       logging.FormatMediaOffset(shot.TimestampSeconds),
		Persisted:    shot.Persisted,
		TextChanged:  shot.TextChanged,
		ImageChanged: shot.ImageChanged,
	}
}

type videoReport struct {
	Video         string             `json:"video"`
	SessionID     string             `json:"session_id,omitempty"`
	Status        string             `json:"status"`
	Error         string             `json:"error,omitempty"`
	OutputDir     string             `json:"output_dir,omitempty"`
	Mode          string             `json:"mode,omitempty"`
	FrameRate     float64            `json:"frame_rate,omitempty"`
	FrameInterval int                `json:"frame_interval,omitempty"`
	Decoded       int                `json:"decoded_frames"`
	Sampled       int                `json:"sampled_frames"`
	Screenshots   []screenshotReport `json:"screenshots"`
}

type scanReport struct {
	Total       int           `json:"total"`
	Succeeded   int           `json:"succeeded"`
	Screenshots int           `json:"screenshots"`
	Videos      []videoReport `json:"videos"`
}

func buildScanReport(summary scan.BatchSummary) scanReport {
	report := scanReport{
		Total:       summary.Total(),
		Succeeded:   summary.Succeeded(),
		Screenshots: summary.Screenshots(),
		Videos:      make([]videoReport, 0, len(summary.Items)),
	}
	for _, item := range summary.Items {
		r := item.Result
		video := videoReport{
			Video:         item.VideoPath,
			SessionID:     r.SessionID,
			Status:        string(services.FailureStatus(item.Err)),
			OutputDir:     r.OutputDir,
			Mode:          string(r.Mode),
			FrameRate:     r.FrameRate,
			FrameInterval: r.FrameInterval,
			Decoded:       r.Decoded,
			Sampled:       r.Sampled,
			Screenshots:   make([]screenshotReport, 0, len(r.Artifacts)),
		}
		if item.Err != nil {
			video.Error = item.Err.Error()
		}
		for _, a := range r.Artifacts {
			video.Screenshots = append(video.Screenshots, artifactReport(a))
		}
		report.Videos = append(report.Videos, video)
	}
	return report
}

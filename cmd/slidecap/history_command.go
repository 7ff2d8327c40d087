package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"slidecap/internal/history"
	"slidecap/internal/logging"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past scans",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

type scanSummaryJSON struct {
	ID              string    `json:"id"`
	VideoPath       string    `json:"video_path"`
	OutputDir       string    `json:"output_dir"`
	Mode            string    `json:"mode"`
	Status          string    `json:"status"`
	Error           string    `json:"error,omitempty"`
	Screenshots     int       `json:"screenshots"`
	DecodedFrames   int       `json:"decoded_frames"`
	SampledFrames   int       `json:"sampled_frames"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds float64   `json:"duration_seconds"`
}

func toSummaryJSON(s history.Scan) scanSummaryJSON {
	return scanSummaryJSON{
		ID:              s.ID,
		VideoPath:       s.VideoPath,
		OutputDir:       s.OutputDir,
		Mode:            s.Mode,
		Status:          string(s.Status),
		Error:           s.ErrorMessage,
		Screenshots:     s.ScreenshotCount,
		DecodedFrames:   s.DecodedFrames,
		SampledFrames:   s.SampledFrames,
		StartedAt:       s.StartedAt,
		DurationSeconds: s.Duration().Seconds(),
	}
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent scans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			scans, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				items := make([]scanSummaryJSON, 0, len(scans))
				for _, s := range scans {
					items = append(items, toSummaryJSON(s))
				}
				return writeJSON(cmd, items)
			}

			out := cmd.OutOrStdout()
			if len(scans) == 0 {
				fmt.Fprintln(out, "No scans recorded")
				return nil
			}
			colorize := shouldColorize(out)
			view := tableView{
				headers: []string{"ID", "Started", "Video", "Mode", "Status", "Shots", "Took"},
				aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			}
			for _, s := range scans {
				view.rows = append(view.rows, []string{
					shortID(s.ID),
					humanize.Time(s.StartedAt),
					s.VideoPath,
					s.Mode,
					colorText(string(s.Status), scanStatusKind(s.Status), colorize),
					strconv.Itoa(s.ScreenshotCount),
					s.Duration().Round(time.Millisecond).String(),
				})
			}
			fmt.Fprintln(out, view.render())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum scans to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <scan-id>",
		Short: "Show a scan and its screenshots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			scan, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			shots, err := store.Screenshots(cmd.Context(), scan.ID)
			if err != nil {
				return err
			}

			if jsonOutput {
				payload := struct {
					scanSummaryJSON
					FrameRate           float64            `json:"frame_rate"`
					Interval            float64            `json:"interval_seconds"`
					SimilarityThreshold float64            `json:"similarity_threshold"`
					HashThreshold       int                `json:"hash_threshold"`
					Screenshots         []screenshotReport `json:"screenshot_list"`
				}{
					scanSummaryJSON:     toSummaryJSON(*scan),
					FrameRate:           scan.FrameRate,
					Interval:            scan.Interval,
					SimilarityThreshold: scan.SimilarityThreshold,
					HashThreshold:       scan.HashThreshold,
					Screenshots:         make([]screenshotReport, 0, len(shots)),
				}
				for _, shot := range shots {
					payload.Screenshots = append(payload.Screenshots, recordedShotReport(shot))
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Scan "+scan.ID, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Status", scanStatusKind(scan.Status), scan.ErrorMessage, colorize))
			fmt.Fprintln(out, renderStatusLine("Video", statusInfo, scan.VideoPath, colorize))
			fmt.Fprintln(out, renderStatusLine("Output", statusInfo, scan.OutputDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Mode", statusInfo, scan.Mode, colorize))
			fmt.Fprintln(out, renderStatusLine("Interval", statusInfo, fmt.Sprintf("%gs at %.3f fps", scan.Interval, scan.FrameRate), colorize))
			fmt.Fprintln(out, renderStatusLine("Thresholds", statusInfo,
				fmt.Sprintf("similarity < %g, hash distance > %d", scan.SimilarityThreshold, scan.HashThreshold), colorize))
			fmt.Fprintln(out, renderStatusLine("Frames", statusInfo,
				fmt.Sprintf("%d decoded, %d sampled", scan.DecodedFrames, scan.SampledFrames), colorize))
			fmt.Fprintln(out, renderStatusLine("Started", statusInfo,
				fmt.Sprintf("%s (%s)", scan.StartedAt.Local().Format(time.DateTime), scan.Duration().Round(time.Millisecond)), colorize))

			if len(shots) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			view := tableView{
				headers: []string{"#", "Frame", "Time", "Text", "Image", "Saved", "Path"},
				aligns:  []columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			}
			for _, shot := range shots {
				view.rows = append(view.rows, []string{
					strconv.Itoa(shot.Sequence),
					strconv.Itoa(shot.FrameIndex),
					logging.FormatMediaOffset(shot.TimestampSeconds),
					yesNo(shot.TextChanged),
					yesNo(shot.ImageChanged),
					yesNo(shot.Persisted),
					shot.Path,
				})
			}
			fmt.Fprintln(out, view.render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete scan records older than --days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			cutoff := time.Now().AddDate(0, 0, -days)
			removed, err := store.PruneBefore(cmd.Context(), cutoff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d scan(s) started before %s\n", removed, cutoff.Format(time.DateOnly))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "Keep scans newer than this many days")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

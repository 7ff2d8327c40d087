package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"slidecap/internal/config"
	"slidecap/internal/detect"
	"slidecap/internal/history"
	"slidecap/internal/logging"
	"slidecap/internal/media/frames"
	"slidecap/internal/ocr"
	"slidecap/internal/preflight"
	"slidecap/internal/scan"
	"slidecap/internal/services"
)

type scanFlags struct {
	interval      float64
	mode          string
	similarity    float64
	hashThreshold int
	outputDir     string
	noHistory     bool
	skipChecks    bool
	listPaths     bool
	jsonOutput    bool
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan <video>...",
		Short: "Save a screenshot whenever the slide changes",
		Long: `Scan one or more videos and write a PNG each time the on-screen text
or picture changes. Screenshots land in <video dir>/<name>_screenshots unless
--output-dir or scan.output_dir is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			opts, err := scanOptions(cmd, cfg, flags)
			if err != nil {
				return err
			}

			logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
				Dir:     cfg.Paths.LogDir,
				Pattern: config.LogFilePattern,
				Exclude: []string{cfg.LogPath()},
			})

			if !flags.skipChecks {
				if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg, string(opts.Mode))); len(failed) > 0 {
					return preflightError(failed)
				}
			}

			scanner, err := scan.NewScanner(opts, scan.Dependencies{
				Opener: frames.FFmpeg{
					FFmpegBinary:  cfg.FFmpegBinary(),
					FFprobeBinary: cfg.FFprobeBinary(),
					Logger:        logging.NewComponentLogger(logger, "decoder"),
				},
				OCR:    ocr.NewTesseract(cfg),
				Logger: logger,
			})
			if err != nil {
				return err
			}

			var store *history.Store
			if cfg.History.Enabled && !flags.noHistory {
				store, err = history.Open(cfg.HistoryPath())
				if err != nil {
					logging.WarnWithContext(logger, "history unavailable; scans will not be recorded", "history_open_failed",
						logging.String("path", cfg.HistoryPath()),
						logging.Error(err),
						logging.String(logging.FieldImpact, "slidecap history will not list these scans"),
					)
				} else {
					defer store.Close()
				}
			}

			summary := scanner.ScanAll(cmd.Context(), args, func(item scan.BatchItem) {
				if store != nil {
					recordScan(cmd.Context(), store, logger, opts, item)
				}
			})

			if flags.jsonOutput {
				if err := writeJSON(cmd, buildScanReport(summary)); err != nil {
					return err
				}
			} else {
				renderScanSummary(cmd.OutOrStdout(), summary, flags.listPaths)
			}

			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if failed := summary.Total() - summary.Succeeded(); failed > 0 {
				return fmt.Errorf("%d of %d videos failed", failed, summary.Total())
			}
			return nil
		},
	}

	cmd.Flags().Float64VarP(&flags.interval, "interval", "i", 0, "Seconds between inspected frames (default from config)")
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "Detection mode: text, image, or combined (default from config)")
	cmd.Flags().Float64Var(&flags.similarity, "similarity-threshold", 0, "Structural similarity below which a frame counts as changed")
	cmd.Flags().IntVar(&flags.hashThreshold, "hash-threshold", 0, "Average-hash distance above which a frame counts as changed")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "Write every video's screenshots to this directory")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "Do not record this run in the scan history")
	cmd.Flags().BoolVar(&flags.skipChecks, "skip-checks", false, "Skip the dependency checks before scanning")
	cmd.Flags().BoolVar(&flags.listPaths, "list", false, "Print every saved screenshot path")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// scanOptions merges config defaults with the flags the user actually set.
func scanOptions(cmd *cobra.Command, cfg *config.Config, flags scanFlags) (scan.Options, error) {
	opts := scan.Options{
		Interval: cfg.Scan.Interval,
		Mode:     detect.Mode(cfg.Scan.Mode),
		Thresholds: detect.Thresholds{
			Similarity:   cfg.Scan.SimilarityThreshold,
			HashDistance: cfg.Scan.HashThreshold,
		},
		OutputDir: cfg.Scan.OutputDir,
	}
	changed := cmd.Flags().Changed
	if changed("interval") {
		opts.Interval = flags.interval
	}
	if changed("mode") {
		mode, err := detect.ParseMode(flags.mode)
		if err != nil {
			return scan.Options{}, err
		}
		opts.Mode = mode
	}
	if changed("similarity-threshold") {
		opts.Thresholds.Similarity = flags.similarity
	}
	if changed("hash-threshold") {
		opts.Thresholds.HashDistance = flags.hashThreshold
	}
	if changed("output-dir") {
		dir, err := config.ExpandPath(strings.TrimSpace(flags.outputDir))
		if err != nil {
			return scan.Options{}, fmt.Errorf("resolve output dir: %w", err)
		}
		opts.OutputDir = dir
	}
	return opts, nil
}

func preflightError(failed []preflight.Result) error {
	parts := make([]string, 0, len(failed))
	for _, f := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Detail))
	}
	return fmt.Errorf("not ready to scan (run `slidecap check` for details): %s", strings.Join(parts, "; "))
}

func recordScan(ctx context.Context, store *history.Store, logger *slog.Logger, opts scan.Options, item scan.BatchItem) {
	result := item.Result
	record := history.Scan{
		ID:                  result.SessionID,
		VideoPath:           item.VideoPath,
		OutputDir:           result.OutputDir,
		Mode:                string(opts.Mode),
		Interval:            opts.Interval,
		SimilarityThreshold: opts.Thresholds.Similarity,
		HashThreshold:       opts.Thresholds.HashDistance,
		Status:              services.FailureStatus(item.Err),
		FrameRate:           result.FrameRate,
		DecodedFrames:       result.Decoded,
		SampledFrames:       result.Sampled,
		StartedAt:           result.StartedAt,
		FinishedAt:          result.FinishedAt,
	}
	// Videos rejected before a session starts still get a ledger entry.
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if item.Err != nil {
		record.ErrorMessage = item.Err.Error()
	}

	shots := make([]history.Screenshot, 0, len(result.Artifacts))
	for _, a := range result.Artifacts {
		shots = append(shots, history.Screenshot{
			Sequence:         a.Sequence,
			FrameIndex:       a.FrameIndex,
			TimestampSeconds: a.Timestamp,
			Path:             a.Path,
			Persisted:        a.Persisted,
			TextChanged:      a.TextChanged,
			ImageChanged:     a.ImageChanged,
		})
	}

	// A cancelled batch still records the session it interrupted.
	if errors.Is(ctx.Err(), context.Canceled) {
		ctx = context.WithoutCancel(ctx)
	}
	if err := store.Record(ctx, record, shots); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_record_failed",
			logging.String("session_id", record.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "scan is missing from slidecap history"),
		)
	}
}

func renderScanSummary(out io.Writer, summary scan.BatchSummary, listPaths bool) {
	colorize := shouldColorize(out)
	view := tableView{
		headers: []string{"Video", "Status", "Screenshots", "Unsaved", "Output"},
		aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	}
	for _, item := range summary.Items {
		status := services.FailureStatus(item.Err)
		unsaved := 0
		for _, a := range item.Result.Artifacts {
			if !a.Persisted {
				unsaved++
			}
		}
		output := item.Result.OutputDir
		if item.Err != nil && len(item.Result.Artifacts) == 0 {
			output = item.Err.Error()
		}
		view.rows = append(view.rows, []string{
			filepath.Base(item.VideoPath),
			colorText(string(status), scanStatusKind(status), colorize),
			strconv.Itoa(len(item.Result.Artifacts)),
			strconv.Itoa(unsaved),
			output,
		})
	}
	view.footer = []string{
		fmt.Sprintf("%d/%d ok", summary.Succeeded(), summary.Total()),
		"",
		strconv.Itoa(summary.Screenshots()),
		"",
		"",
	}
	fmt.Fprintln(out, view.render())

	if !listPaths {
		return
	}
	for _, item := range summary.Items {
		for _, path := range item.Result.Paths() {
			fmt.Fprintln(out, path)
		}
	}
}

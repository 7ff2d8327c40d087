package preflight

import (
	"context"
	"strings"

	"slidecap/internal/config"
	"slidecap/internal/detect"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

// RunAll executes every applicable check for cfg. mode overrides
// cfg.Scan.Mode when non-empty so a CLI --mode flag is honoured.
func RunAll(ctx context.Context, cfg *config.Config, mode string) []Result {
	if cfg == nil {
		return nil
	}
	if strings.TrimSpace(mode) == "" {
		mode = cfg.Scan.Mode
	}
	parsed, err := detect.ParseMode(mode)
	if err != nil {
		return []Result{{Name: "Scan mode", Detail: err.Error()}}
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	if dir := strings.TrimSpace(cfg.Scan.OutputDir); dir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", dir))
	}

	for _, status := range CheckSystemDeps(cfg, parsed) {
		result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Resolved
		}
		results = append(results, result)
	}

	if parsed.UsesText() {
		results = append(results, CheckTesseractLanguages(ctx, cfg))
	}
	return results
}

package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// MissingLanguages runs `tesseract --list-langs` and returns the requested
// languages ("chi_sim+eng" style) that are not installed.
func MissingLanguages(ctx context.Context, binary, languages, tessdataDir string) ([]string, error) {
	wanted := splitLanguages(languages)
	if len(wanted) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	args := []string{"--list-langs"}
	if dir := strings.TrimSpace(tessdataDir); dir != "" {
		args = append(args, "--tessdata-dir", dir)
	}
	// Older tesseract releases print the list on stderr.
	output, err := exec.CommandContext(ctx, binary, args...).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("list tesseract languages: %w: %s", err, strings.TrimSpace(string(output)))
	}

	installed := make(map[string]struct{})
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of available languages") {
			continue
		}
		installed[line] = struct{}{}
	}

	var missing []string
	for _, lang := range wanted {
		if _, ok := installed[lang]; !ok {
			missing = append(missing, lang)
		}
	}
	return missing, nil
}

func splitLanguages(value string) []string {
	var out []string
	for _, part := range strings.Split(value, "+") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

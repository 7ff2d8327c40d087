package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"slidecap/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories, decoders, and OCR are ready",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, mode)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Readiness", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range results {
				fmt.Fprintln(out, renderStatusLine(result.Name, checkKind(result), result.Detail, colorize))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				names := make([]string, 0, len(failed))
				for _, f := range failed {
					names = append(names, f.Name)
				}
				return fmt.Errorf("%d check(s) failed: %s", len(failed), strings.Join(names, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Check requirements for this detection mode (text, image, combined)")
	return cmd
}

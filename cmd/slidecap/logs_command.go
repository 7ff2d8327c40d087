package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slidecap/internal/config"
	"slidecap/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var session string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the newest slidecap log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := logs.Latest(cfg.Paths.LogDir, config.LogFilePattern)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tailer := logs.NewTailer(path, logs.SessionFilter(session))
			recent, err := tailer.Last(lines)
			if err != nil {
				return err
			}
			for _, line := range recent {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return tailer.Follow(cmd.Context(), func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	cmd.Flags().StringVar(&session, "session", "", "Only show lines for this scan session ID")
	return cmd
}

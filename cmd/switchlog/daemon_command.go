package main

import (
	"github.com/spf13/cobra"

	"switchlog/internal/daemonrun"
)

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var replayPath string
	var logLevel string
	var development bool

	cmd := &cobra.Command{
		Use:    "daemon",
		Short:  "Run the switchlog daemon in the foreground",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    logLevel,
				Development: development,
				ReplayPath:  replayPath,
			})
		},
	}
	cmd.Flags().StringVar(&replayPath, "replay", "", "Replay script path to play instead of live device feeds")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().BoolVar(&development, "development", false, "Enable development logging output")
	return cmd
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"switchlog/internal/daemonctl"
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	var replayPath string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a recording session, launching the daemon if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}

			client, launched, err := daemonctl.EnsureClient(
				ctx.socketPath(),
				exe,
				daemonctl.LaunchOptions{
					ConfigPath: ctx.configPath(),
					ReplayPath: replayPath,
				},
				10*time.Second,
			)
			if err != nil {
				return err
			}
			defer client.Close()

			if launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}

			resp, err := client.SessionStart()
			if err != nil {
				return err
			}
			if !resp.Started {
				fmt.Fprintln(stdout, resp.Message)
				return nil
			}
			fmt.Fprintf(stdout, "Session %s started at %s\n",
				shortSessionID(resp.Session.ID), resp.Session.Rate)
			return nil
		},
	}
	cmd.Flags().StringVar(&replayPath, "replay", "", "Replay script path used when launching the daemon")
	return cmd
}

func shortSessionID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

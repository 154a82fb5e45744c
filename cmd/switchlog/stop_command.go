package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"switchlog/internal/ipc"
)

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the active recording session and export its EDL",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionStop()
				if err != nil {
					return err
				}
				if !resp.Stopped {
					fmt.Fprintln(stdout, resp.Message)
					return nil
				}

				row := resp.Summary.Session
				fmt.Fprintf(stdout, "Session %s stopped: %d cuts\n",
					shortSessionID(row.ID), row.CutCount)
				if row.Unresolved > 0 {
					fmt.Fprintf(stdout, "Warning: %d records have unresolved timecodes\n", row.Unresolved)
				}
				if resp.Summary.EDLPath != "" {
					fmt.Fprintf(stdout, "EDL written to %s\n", resp.Summary.EDLPath)
				} else {
					fmt.Fprintln(stdout, "No EDL written")
				}
				return nil
			})
		},
	}
}

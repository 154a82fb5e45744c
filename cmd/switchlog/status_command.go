package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"switchlog/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			client, err := ctx.dialClient()
			if err != nil {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			defer client.Close()

			status, err := client.Status()
			if err != nil {
				return err
			}

			colorize := shouldColorize(stdout)
			fmt.Fprintln(stdout, colorizeHeading("Daemon", colorize))
			fmt.Fprintln(stdout, renderTable(
				[]string{"Field", "Value"},
				[][]string{
					{"Running", yesNo(status.Running)},
					{"PID", strconv.Itoa(status.PID)},
					{"Archive", status.ArchivePath},
					{"Lock", status.LockPath},
				},
			))

			if status.Session == nil {
				fmt.Fprintln(stdout, "No active session")
				return nil
			}
			renderSessionStatus(stdout, *status.Session, colorize)
			return nil
		},
	}
}

func renderSessionStatus(stdout io.Writer, s api.SessionStatus, colorize bool) {
	fmt.Fprintln(stdout, colorizeHeading("Session", colorize))
	fmt.Fprintln(stdout, renderTable(
		[]string{"Field", "Value"},
		[][]string{
			{"ID", s.ID},
			{"State", s.State},
			{"Rate", s.Rate},
			{"Transport", s.Transport},
			{"Started", s.StartedAt.Local().Format(time.RFC3339)},
			{"Current source", s.CurrentSource},
			{"Duplicates", strconv.FormatUint(s.Duplicates, 10)},
			{"Degraded", strconv.FormatUint(s.Degraded, 10)},
			{"Discontinuities", strconv.FormatUint(s.Discontinuities, 10)},
			{"Dropped events", strconv.FormatUint(s.DroppedEvents, 10)},
		},
	))

	if len(s.Records) == 0 {
		fmt.Fprintln(stdout, "No cuts recorded yet")
		return
	}
	fmt.Fprintln(stdout, colorizeHeading("Cut log", colorize))
	fmt.Fprintln(stdout, renderTable(
		[]string{"#", "Source", "Record in", "Record out", "Flags"},
		cutRecordRows(s.Records),
		0,
	))
}

func cutRecordRows(records []api.CutRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		flags := ""
		if rec.Open {
			flags = "open"
		}
		if rec.Unresolved {
			if flags != "" {
				flags += ", "
			}
			flags += "unresolved"
		}
		recordIn := rec.RecordIn
		if recordIn == "" {
			recordIn = "--:--:--:--"
		}
		recordOut := rec.RecordOut
		if recordOut == "" {
			recordOut = "--:--:--:--"
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.Sequence + 1),
			rec.SourceLabel,
			recordIn,
			recordOut,
			flags,
		})
	}
	return rows
}

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"switchlog/internal/api"
	"switchlog/internal/ipc"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List archived sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionList(limit)
				if err != nil {
					return err
				}
				if len(resp.Sessions) == 0 {
					fmt.Fprintln(stdout, "No archived sessions")
					return nil
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"ID", "Title", "Rate", "Started", "Duration", "Cuts", "Unresolved"},
					sessionRows(resp.Sessions),
					5, 6,
				))
				return nil
			})
		},
	}
	sessionsCmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of sessions to list (0 for all)")

	sessionsCmd.AddCommand(newSessionsShowCommand(ctx))
	return sessionsCmd
}

func newSessionsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show one archived session and its cut records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionDescribe(args[0])
				if err != nil {
					return err
				}

				row := resp.Session
				colorize := shouldColorize(stdout)
				fmt.Fprintln(stdout, colorizeHeading("Session", colorize))
				fmt.Fprintln(stdout, renderTable(
					[]string{"Field", "Value"},
					[][]string{
						{"ID", row.ID},
						{"Title", row.Title},
						{"Rate", row.Rate},
						{"Started", row.StartedAt.Local().Format(time.RFC3339)},
						{"Stopped", row.StoppedAt.Local().Format(time.RFC3339)},
						{"Cuts", strconv.Itoa(row.CutCount)},
						{"Unresolved", strconv.Itoa(row.Unresolved)},
						{"Duplicates", strconv.FormatUint(row.Duplicates, 10)},
						{"Degraded", strconv.FormatUint(row.Degraded, 10)},
						{"Discontinuities", strconv.FormatUint(row.Discontinuities, 10)},
						{"Dropped events", strconv.FormatUint(row.DroppedEvents, 10)},
						{"EDL", row.EDLPath},
					},
				))

				if len(resp.Records) == 0 {
					fmt.Fprintln(stdout, "No cut records")
					return nil
				}
				fmt.Fprintln(stdout, colorizeHeading("Cut records", colorize))
				fmt.Fprintln(stdout, renderTable(
					[]string{"#", "Source", "Record in", "Record out"},
					archivedRecordRows(resp.Records),
					0,
				))
				return nil
			})
		},
	}
}

func sessionRows(sessions []api.SessionSummary) [][]string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		duration := s.StoppedAt.Sub(s.StartedAt).Round(time.Second)
		rows = append(rows, []string{
			shortSessionID(s.ID),
			s.Title,
			s.Rate,
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			duration.String(),
			strconv.Itoa(s.CutCount),
			strconv.Itoa(s.Unresolved),
		})
	}
	return rows
}

func archivedRecordRows(records []api.ArchivedRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		recordIn := rec.RecordIn
		if recordIn == "" {
			recordIn = "--:--:--:--"
		}
		recordOut := rec.RecordOut
		if recordOut == "" {
			recordOut = "--:--:--:--"
		}
		label := rec.SourceLabel
		if label == "" {
			label = rec.SourceID
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.Sequence + 1),
			label,
			recordIn,
			recordOut,
		})
	}
	return rows
}

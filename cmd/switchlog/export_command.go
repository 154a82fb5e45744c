package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"switchlog/internal/ipc"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Print or save the EDL of an archived session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Export(args[0])
				if err != nil {
					return err
				}

				target := strings.TrimSpace(outputPath)
				if target == "" {
					fmt.Fprint(stdout, resp.EDL)
					return nil
				}
				if err := os.WriteFile(target, []byte(resp.EDL), 0o644); err != nil {
					return fmt.Errorf("write edl: %w", err)
				}
				fmt.Fprintf(stdout, "EDL written to %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the EDL to a file instead of stdout")
	return cmd
}

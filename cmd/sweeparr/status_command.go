package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sweeparr/internal/textutil"
	"sweeparr/internal/tracker"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the downloads currently being tracked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := tracker.Open(cfg)
			if err != nil {
				return fmt.Errorf("open tracking store: %w", err)
			}
			defer store.Close()

			items, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list tracked items: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No downloads are currently tracked.")
				return nil
			}

			headers := []string{"ID", "Progress", "Added", "Last Seen", "Last Progress"}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					item.ID,
					textutil.FormatSize(item.Progress),
					humanize.Time(item.AddedAt),
					humanize.Time(item.LastSeen),
					humanize.Time(item.LastProgress),
				})
			}
			aligns := []columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			fmt.Fprintf(out, "%d tracked download(s) in %s\n", len(items), store.Path())
			return nil
		},
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"stillreel/history"

	"github.com/spf13/cobra"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded conversion runs, newest first",
		Long:  "List recorded conversion runs. The history database is locked while the server runs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			if err := setupLogging(cfg, cmd.ErrOrStderr(), false); err != nil {
				return err
			}

			store, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List()
			if err != nil {
				return err
			}
			if limit > 0 && len(runs) > limit {
				runs = runs[:limit]
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	return cmd
}

func renderRuns(runs []history.RunRecord) string {
	headers := []string{"ID", "Started", "Outcome", "Step", "Image", "Audio", "Output", "Took"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		output := ""
		if r.OutputSize > 0 {
			output = strconv.Itoa(r.OutputSize)
		}
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			string(r.Outcome),
			r.Step,
			r.Image.Name,
			r.Audio.Name,
			output,
			r.Duration().Round(time.Millisecond).String(),
		})
	}
	return renderTable(headers, rows, aligns)
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dimasjulianto/app-video-cutter/db"
)

var (
	historyLimit int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs",
	Long:  `List recent cutting runs, newest first, with their clip counts and outcome.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openInspectRuntime()
		if err != nil {
			return err
		}
		defer rt.Shutdown()
		if rt.Store() == nil {
			return errNoStore
		}

		if historyClear {
			if err := db.ClearRuns(rt.Store()); err != nil {
				return err
			}
			fmt.Println("Run history cleared.")
			return nil
		}

		runs, err := db.RecentRuns(rt.Store(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tVIDEO\tENCODER\tCLIPS\tFAILED\tSKIPPED\tSTATUS")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04"), filepath.Base(r.InputPath), r.Encoder,
				r.Succeeded, r.Total, r.Failed, r.Skipped, r.Status)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", db.DefaultHistoryLimit, "number of runs to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete the run history")
	rootCmd.AddCommand(historyCmd)
}

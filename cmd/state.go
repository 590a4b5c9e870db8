package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dimasjulianto/app-video-cutter/db"
)

var errNoStore = errors.New("persisted state is unavailable (see the log for details)")

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show or clear remembered folders",
	Long:  `Show or clear the last-used input video and output folders that pre-fill the settings form.`,
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show remembered values",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openInspectRuntime()
		if err != nil {
			return err
		}
		defer rt.Shutdown()
		if rt.Store() == nil {
			return errNoStore
		}

		settings, err := db.ListSettings(rt.Store())
		if err != nil {
			return err
		}
		if len(settings) == 0 {
			fmt.Println("Nothing remembered yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE\tUPDATED")
		for _, s := range settings {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Key, s.Value, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget remembered values",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openInspectRuntime()
		if err != nil {
			return err
		}
		defer rt.Shutdown()
		if rt.Store() == nil {
			return errNoStore
		}

		if err := db.ClearSettings(rt.Store()); err != nil {
			return err
		}
		fmt.Println("Remembered folders cleared.")
		return nil
	},
}

func init() {
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateClearCmd)
	rootCmd.AddCommand(stateCmd)
}

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dimasjulianto/app-video-cutter/clip"
	"github.com/dimasjulianto/app-video-cutter/gpu"
)

var encodersCmd = &cobra.Command{
	Use:   "encoders",
	Short: "List the encoders available on this machine",
	Long:  `Detect GPUs and list the encoders they provide. The one marked with * is used when the encoder is "auto".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openInspectRuntime()
		if err != nil {
			return err
		}
		defer rt.Shutdown()

		caps := rt.Capabilities(cmd.Context())
		rec := gpu.Recommend(caps)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\tDEVICE\tVENDOR\tENCODER\tPRESET")
		for _, c := range caps {
			mark := ""
			if c == rec {
				mark = "*"
			}
			p, _ := clip.ResolveProfile(c.Encoder)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", mark, c.Name, c.Vendor, c.Encoder, p.Preset)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(encodersCmd)
}

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dimasjulianto/app-video-cutter/mpv"
	"github.com/dimasjulianto/app-video-cutter/pkg/cliputil"
	"github.com/dimasjulianto/app-video-cutter/pkg/timeutil"
)

var (
	previewFlags runFlags
	previewPad   float64
)

var previewCmd = &cobra.Command{
	Use:   "preview <video-file> <clip-number>",
	Short: "Play a planned clip in mpv",
	Long: `Play clip N of the plan (as listed by 'plan') in mpv without encoding it.
--pad adds seconds of context before and after the clip.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := previewFlags.apply(cmd); err != nil {
			return err
		}
		req, err := previewFlags.request(args[0])
		if err != nil {
			return err
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid clip number: %s", args[1])
		}

		rt, err := openInspectRuntime()
		if err != nil {
			return err
		}
		defer rt.Shutdown()

		clips, meta, err := planClips(cmd.Context(), rt, req)
		if err != nil {
			return err
		}
		if index < 1 || index > len(clips) {
			return fmt.Errorf("clip number must be between 1 and %d", len(clips))
		}
		c := clips[index-1]

		from, to := cliputil.CalculatePreviewBounds(c.Start, c.Duration, previewPad, meta.Duration)

		fmt.Printf("Playing clip %d (%s - %s)\n", c.Index, timeutil.FormatTime(c.Start), timeutil.FormatTime(c.End()))
		return mpv.Preview(cmd.Context(), rt.Config().MpvPath, req.InputPath, from, to-from)
	},
}

func init() {
	previewFlags.register(previewCmd)
	previewCmd.Flags().Float64Var(&previewPad, "pad", 0, "seconds of context before and after the clip")
	rootCmd.AddCommand(previewCmd)
}

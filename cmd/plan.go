package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dimasjulianto/app-video-cutter/app"
	"github.com/dimasjulianto/app-video-cutter/clip"
	"github.com/dimasjulianto/app-video-cutter/pkg/timeutil"
	"github.com/dimasjulianto/app-video-cutter/probe"
	"github.com/dimasjulianto/app-video-cutter/reclaim"
)

// noReclaim is used by commands that never start an encoder.
type noReclaim struct{}

func (noReclaim) Reclaim(context.Context) []reclaim.CleanupWarning { return nil }

// openInspectRuntime returns a runtime for commands that only read: no
// cleanup runs on shutdown.
func openInspectRuntime() (*app.Runtime, error) {
	return app.New(cfg, app.Options{Reclaimer: noReclaim{}})
}

// planClips probes req.InputPath and returns the clips a cut would produce.
func planClips(ctx context.Context, rt *app.Runtime, req app.Request) ([]clip.Descriptor, probe.VideoMetadata, error) {
	if err := req.Validate(); err != nil {
		return nil, probe.VideoMetadata{}, err
	}
	meta, err := rt.Inspect(ctx, req.InputPath)
	if err != nil {
		return nil, meta, err
	}
	clips, err := clip.Plan(clip.PlanRequest{
		InputPath:    req.InputPath,
		OutputDir:    req.ResolvedOutputDir(),
		Encoder:      rt.ResolveEncoder(ctx, req.Encoder),
		ClipDuration: req.ClipDuration,
		SkipDuration: req.SkipDuration,
		HasAudio:     meta.HasAudio,
	}, meta.Duration)
	return clips, meta, err
}

var planFlags runFlags

var planCmd = &cobra.Command{
	Use:   "plan <video-file>",
	Short: "Show the clips a cut would produce",
	Long:  `Probe the video and print the planned clips without encoding anything.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := planFlags.apply(cmd); err != nil {
			return err
		}
		req, err := planFlags.request(args[0])
		if err != nil {
			return err
		}

		rt, err := openInspectRuntime()
		if err != nil {
			return err
		}
		defer rt.Shutdown()

		clips, _, err := planClips(cmd.Context(), rt, req)
		if err != nil {
			return err
		}
		if len(clips) == 0 {
			fmt.Println("No clips: the video has no duration.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tSTART\tEND\tLENGTH\tOUTPUT")
		for _, c := range clips {
			fmt.Fprintf(w, "%d\t%s\t%s\t%ss\t%s\n",
				c.Index, timeutil.FormatTimestamp(c.Start), timeutil.FormatTimestamp(c.End()),
				timeutil.FormatSeconds(c.Duration), c.Name())
		}
		w.Flush()

		fmt.Printf("\n%d clips, encoder %s, output %s\n", len(clips), clips[0].Encoder, req.ResolvedOutputDir())
		return nil
	},
}

func init() {
	planFlags.register(planCmd)
	rootCmd.AddCommand(planCmd)
}

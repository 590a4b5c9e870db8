package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dimasjulianto/app-video-cutter/app"
	"github.com/dimasjulianto/app-video-cutter/clip"
	"github.com/dimasjulianto/app-video-cutter/db"
	"github.com/dimasjulianto/app-video-cutter/deps"
	"github.com/dimasjulianto/app-video-cutter/pkg/cliputil"
	"github.com/dimasjulianto/app-video-cutter/pkg/timeutil"
	"github.com/dimasjulianto/app-video-cutter/tui"
	"github.com/dimasjulianto/app-video-cutter/tui/forms"
)

// runFlags are the run parameters shared by cut, plan and preview.
type runFlags struct {
	out     string
	title   string
	workers int
	clip    string
	skip    string
	encoder string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output folder (default: <video name>-clips next to the video)")
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "subfolder name under the output folder")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "parallel encoders, 1-16 (default from config)")
	cmd.Flags().StringVar(&f.clip, "clip", "", "clip length, seconds or MM:SS (default from config)")
	cmd.Flags().StringVar(&f.skip, "skip", "", "gap between clips, seconds or MM:SS (default from config)")
	cmd.Flags().StringVarP(&f.encoder, "encoder", "e", "", "encoder id or 'auto' (default from config)")
}

// apply overlays the flags the user set on the config run parameters.
func (f *runFlags) apply(cmd *cobra.Command) error {
	if cmd.Flags().Changed("workers") {
		cfg.Workers = f.workers
	}
	if cmd.Flags().Changed("clip") {
		v, err := timeutil.ParseTimeToSeconds(f.clip)
		if err != nil {
			return fmt.Errorf("--clip: %w", err)
		}
		cfg.ClipDuration = v
	}
	if cmd.Flags().Changed("skip") {
		v, err := timeutil.ParseTimeToSeconds(f.skip)
		if err != nil {
			return fmt.Errorf("--skip: %w", err)
		}
		cfg.SkipDuration = v
	}
	if cmd.Flags().Changed("encoder") {
		cfg.Encoder = f.encoder
	}
	return nil
}

// request builds the run request for input from the config and flags.
func (f *runFlags) request(input string) (app.Request, error) {
	abs, err := filepath.Abs(input)
	if err != nil {
		return app.Request{}, fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return app.Request{}, fmt.Errorf("video file not found: %s", abs)
	}
	if err != nil {
		return app.Request{}, fmt.Errorf("failed to access video file: %w", err)
	}
	if info.IsDir() {
		return app.Request{}, fmt.Errorf("path is a directory, not a video file: %s", abs)
	}

	req := app.NewRequest(cfg, abs)
	req.OutputRoot = f.out
	req.Title = f.title
	return req, nil
}

var (
	cutFlags       runFlags
	cutInteractive bool
	cutNoTUI       bool
)

var cutCmd = &cobra.Command{
	Use:   "cut [video-file]",
	Short: "Cut a video into clips",
	Long: `Cut a video into clips of --clip length, leaving --skip between the
end of one clip and the start of the next. Without a video file (or with
--interactive) a settings form is shown, pre-filled with the last-used paths.

Press q or Ctrl+C once to stop launching new clips and let running ones
finish; press again to stop the running encoders as well.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCut,
}

func runCut(cmd *cobra.Command, args []string) error {
	if err := cutFlags.apply(cmd); err != nil {
		return err
	}
	if errs := deps.CheckRequired(cfg.FFmpegPath, cfg.FFprobePath); len(errs) > 0 {
		return errors.Join(errs...)
	}

	useTUI := !cutNoTUI && isatty.IsTerminal(os.Stdout.Fd())
	rt, err := app.New(cfg, app.Options{LogToFile: useTUI})
	if err != nil {
		return err
	}
	defer rt.Shutdown()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var req app.Request
	if cutInteractive || len(args) == 0 {
		r, ok, err := askSettings(ctx, rt)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Nothing to do.")
			return nil
		}
		req = r
	} else {
		req, err = cutFlags.request(args[0])
		if err != nil {
			return err
		}
	}

	if useTUI {
		ok, err := confirmOverwrite(ctx, req.ResolvedOutputDir())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Nothing to do.")
			return nil
		}
	}

	stop := watchSignals(cancel, rt.ForceStop)
	defer stop()

	var res clip.RunResult
	if useTUI {
		title := "Cutting " + filepath.Base(req.InputPath)
		res, err = tui.RunWithProgress(title, cancel, rt.ForceStop, func(rep clip.Reporter) (clip.RunResult, error) {
			return rt.Run(ctx, req, rep)
		})
	} else {
		res, err = rt.Run(ctx, req, clip.ReporterFunc(printProgress))
	}

	if err != nil && !errors.Is(err, app.ErrCancelled) {
		return err
	}
	printSummary(res, req.ResolvedOutputDir())
	if err != nil {
		return err
	}
	if !res.OK() {
		return errRunFailed
	}
	return nil
}

// askSettings shows the settings form pre-filled from the persisted
// last-used paths. ok is false when the user declined to start.
func askSettings(ctx context.Context, rt *app.Runtime) (req app.Request, ok bool, err error) {
	var lastInput, lastOutput string
	if store := rt.Store(); store != nil {
		lastInput, _, _ = db.GetSetting(store, db.KeyLastInputVideo)
		lastOutput, _, _ = db.GetSetting(store, db.KeyLastOutputDir)
	}

	result := forms.NewSettingsResult(rt.Config(), lastInput, lastOutput)
	err = forms.NewSettingsForm(rt.Capabilities(ctx), result).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return app.Request{}, false, nil
	}
	if err != nil {
		return app.Request{}, false, fmt.Errorf("settings form: %w", err)
	}
	if !result.Confirmed {
		return app.Request{}, false, nil
	}

	clipSecs, skipSecs, err := result.Durations()
	if err != nil {
		return app.Request{}, false, err
	}
	req, err = cutFlags.request(strings.TrimSpace(result.InputPath))
	if err != nil {
		return app.Request{}, false, err
	}
	req.OutputRoot = strings.TrimSpace(result.OutputRoot)
	req.Title = result.Title
	req.Workers = result.Workers
	req.ClipDuration = clipSecs
	req.SkipDuration = skipSecs
	req.Encoder = result.Encoder
	return req, true, nil
}

// confirmOverwrite asks before writing into a folder that already holds
// clips. It returns true when there is nothing to overwrite.
func confirmOverwrite(ctx context.Context, outDir string) (bool, error) {
	existing := cliputil.ExistingClips(outDir)
	if len(existing) == 0 {
		return true, nil
	}
	overwrite := false
	err := forms.NewConfirmOverwriteForm(outDir, len(existing), &overwrite).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("confirm overwrite: %w", err)
	}
	return overwrite, nil
}

// watchSignals cancels the run on the first SIGINT or SIGTERM and force
// stops running encoders on every later one. The returned func stops
// watching.
func watchSignals(cancel context.CancelFunc, forceStop func()) (stop func()) {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		received := 0
		for {
			select {
			case <-sigs:
				received++
				if received == 1 {
					fmt.Fprintln(os.Stderr, "Stopping after running clips finish (interrupt again to force)...")
					cancel()
				} else {
					forceStop()
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

func printProgress(p clip.Progress) {
	if p.Err != nil {
		fmt.Printf("[%d/%d] ✗ %s: %v\n", p.Completed, p.Total, p.Clip.Name(), p.Err)
		return
	}
	fmt.Printf("[%d/%d] ✓ %s\n", p.Completed, p.Total, p.Clip.Name())
}

func printSummary(res clip.RunResult, outDir string) {
	fmt.Println()
	switch res.Status() {
	case clip.StatusCancelled:
		fmt.Printf("Cancelled: %d of %d clips written, %d failed, %d not started.\n",
			res.Succeeded, res.Total, res.Failed, res.Skipped)
	case clip.StatusFailed:
		fmt.Printf("Finished with errors: %d of %d clips written, %d failed.\n",
			res.Succeeded, res.Total, res.Failed)
	default:
		fmt.Printf("Done: %d clips written.\n", res.Total)
	}
	if res.Succeeded > 0 {
		fmt.Printf("Output: %s\n", outDir)
	}
}

func init() {
	cutFlags.register(cutCmd)
	cutCmd.Flags().BoolVarP(&cutInteractive, "interactive", "i", false, "show the settings form even when a video is given")
	cutCmd.Flags().BoolVar(&cutNoTUI, "no-tui", false, "print plain progress lines instead of the progress view")
	rootCmd.AddCommand(cutCmd)
}

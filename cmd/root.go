// Package cmd implements the video-cutter command line.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dimasjulianto/app-video-cutter/app"
	"github.com/dimasjulianto/app-video-cutter/config"
	"github.com/dimasjulianto/app-video-cutter/deps"
)

var Version = "0.1.0"

// Process exit codes.
const (
	exitOK        = 0
	exitFailure   = 1
	exitCancelled = 130
)

// errRunFailed marks a run that finished with at least one failed clip.
// The summary has already been printed when it is returned.
var errRunFailed = errors.New("run failed")

var (
	configPath string
	logLevel   string

	// cfg is loaded once in PersistentPreRunE and then adjusted by the
	// flags of each command.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "video-cutter",
	Short: "Cut a video into short clips at regular intervals",
	Long: `video-cutter splits a long video into short clips: it takes a clip of
the configured length, skips ahead by the configured gap, and repeats until
the end of the video. Clips are encoded in parallel with ffmpeg, using a
hardware encoder when one is detected.

Features:
  - Parallel encoding with NVENC, AMF, QSV or libx264
  - Interactive settings form and live progress view
  - Preview any planned clip in mpv
  - Remembers last-used folders and keeps a run history`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadDotEnv()
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		cfg = loaded
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("video-cutter version %s\n", Version)
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  `Check that the required tools (ffmpeg, ffprobe) and the optional ones (mpv, nvidia-smi) are installed and available.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Checking dependencies...")
		fmt.Println()

		allGood := true
		for _, d := range deps.All(cfg.FFmpegPath, cfg.FFprobePath, cfg.MpvPath) {
			path, err := d.Check()
			switch {
			case err == nil:
				fmt.Printf("✓ %s: OK (%s)\n", d.Name, path)
			case d.Required:
				fmt.Printf("✗ %s: NOT FOUND\n", d.Name)
				fmt.Printf("  Install from: %s\n", d.InstallURL)
				allGood = false
			default:
				fmt.Printf("- %s: not found (optional)\n", d.Name)
				fmt.Printf("  Install from: %s\n", d.InstallURL)
			}
		}

		fmt.Println()
		if allGood {
			fmt.Println("All required dependencies are installed!")
			return nil
		}
		fmt.Println("Some dependencies are missing. Please install them to cut videos.")
		return errors.New("missing dependencies")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/video-cutter/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error, off")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
}

// Execute runs the root command and exits with 0 on success, 130 when a
// run was cancelled and 1 on any other error.
func Execute() {
	os.Exit(exitCode(rootCmd.Execute()))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, app.ErrCancelled):
		fmt.Fprintln(os.Stderr, "cancelled")
		return exitCancelled
	case errors.Is(err, errRunFailed):
		return exitFailure
	default:
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
}

// Package mpv plays planned clips in the mpv player.
package mpv

import (
	"context"
	"os"
	"os/exec"

	"github.com/dimasjulianto/app-video-cutter/deps"
	"github.com/dimasjulianto/app-video-cutter/pkg/timeutil"
)

// PreviewArgs returns the mpv arguments that play length seconds of
// videoPath starting at start, then exit.
func PreviewArgs(videoPath string, start, length float64) []string {
	return []string{
		"--start=" + timeutil.FormatSeconds(start),
		"--length=" + timeutil.FormatSeconds(length),
		"--keep-open=no",
		"--force-window=yes",
		videoPath,
	}
}

// Preview starts mpv on the given window of videoPath and waits for the
// player to exit. It checks that mpv is installed first and returns an
// error with install link if not.
func Preview(ctx context.Context, binary, videoPath string, start, length float64) error {
	if err := deps.CheckMpv(binary); err != nil {
		return err
	}
	if binary == "" {
		binary = "mpv"
	}

	cmd := exec.CommandContext(ctx, binary, PreviewArgs(videoPath, start, length)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

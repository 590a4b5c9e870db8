package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimasjulianto/app-video-cutter/app"
	"github.com/dimasjulianto/app-video-cutter/config"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitCancelled, exitCode(app.ErrCancelled))
	assert.Equal(t, exitCancelled, exitCode(fmt.Errorf("run: %w", app.ErrCancelled)))
	assert.Equal(t, exitFailure, exitCode(errRunFailed))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
}

func newFlagCmd(f *runFlags) *cobra.Command {
	c := &cobra.Command{Use: "test"}
	f.register(c)
	return c
}

func TestRunFlags_Apply(t *testing.T) {
	cfg = config.Default()
	var f runFlags
	c := newFlagCmd(&f)
	require.NoError(t, c.ParseFlags([]string{"--workers", "8", "--clip", "0:05", "--skip", "20", "--encoder", "h264_qsv"}))
	require.NoError(t, f.apply(c))

	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 5.0, cfg.ClipDuration)
	assert.Equal(t, 20.0, cfg.SkipDuration)
	assert.Equal(t, "h264_qsv", cfg.Encoder)
}

func TestRunFlags_ApplyKeepsConfigWhenUnset(t *testing.T) {
	cfg = config.Default()
	var f runFlags
	c := newFlagCmd(&f)
	require.NoError(t, c.ParseFlags(nil))
	require.NoError(t, f.apply(c))
	assert.Equal(t, config.Default(), cfg)
}

func TestRunFlags_ApplyInvalidDuration(t *testing.T) {
	cfg = config.Default()
	var f runFlags
	c := newFlagCmd(&f)
	require.NoError(t, c.ParseFlags([]string{"--clip", "abc"}))
	assert.Error(t, f.apply(c))
}

func TestRunFlags_Request(t *testing.T) {
	cfg = config.Default()
	dir := t.TempDir()
	video := filepath.Join(dir, "match.mp4")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0644))

	f := runFlags{out: filepath.Join(dir, "out"), title: "Round 1"}
	req, err := f.request(video)
	require.NoError(t, err)
	assert.Equal(t, video, req.InputPath)
	assert.Equal(t, cfg.Workers, req.Workers)
	assert.Equal(t, filepath.Join(dir, "out", "Round_1"), req.ResolvedOutputDir())

	_, err = f.request(filepath.Join(dir, "missing.mp4"))
	assert.Error(t, err)
	_, err = f.request(dir)
	assert.Error(t, err)
}

package forms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimasjulianto/app-video-cutter/config"
	"github.com/dimasjulianto/app-video-cutter/gpu"
)

func TestNewSettingsResult(t *testing.T) {
	r := NewSettingsResult(config.Default(), "/videos/a.mp4", "/out")
	assert.Equal(t, "/videos/a.mp4", r.InputPath)
	assert.Equal(t, "/out", r.OutputRoot)
	assert.Equal(t, 4, r.Workers)
	assert.Equal(t, "3", r.ClipDuration)
	assert.Equal(t, "10", r.SkipDuration)

	clipSecs, skipSecs, err := r.Durations()
	require.NoError(t, err)
	assert.Equal(t, 3.0, clipSecs)
	assert.Equal(t, 10.0, skipSecs)
}

func TestDurations_MinutesSeconds(t *testing.T) {
	r := &SettingsResult{ClipDuration: "0:05", SkipDuration: "1:30"}
	clipSecs, skipSecs, err := r.Durations()
	require.NoError(t, err)
	assert.Equal(t, 5.0, clipSecs)
	assert.Equal(t, 90.0, skipSecs)

	r.ClipDuration = "soon"
	_, _, err = r.Durations()
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "match.mp4")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0o644))

	assert.NoError(t, ValidateVideoPath(video))
	assert.Error(t, ValidateVideoPath(""))
	assert.Error(t, ValidateVideoPath(dir))
	assert.Error(t, ValidateVideoPath(filepath.Join(dir, "missing.mp4")))

	assert.NoError(t, ValidateClipDuration("3"))
	assert.Error(t, ValidateClipDuration("0"))
	assert.Error(t, ValidateClipDuration("0.5"))
	assert.NoError(t, ValidateClipDuration("1"))
	assert.NoError(t, ValidateSkipDuration("0"))
	assert.Error(t, ValidateSkipDuration("x"))
}

func TestEncoderOptions(t *testing.T) {
	caps := []gpu.Capability{
		{Name: "RTX", Vendor: gpu.VendorNVIDIA, Encoder: gpu.EncoderNVENC},
		{Name: "RTX 2", Vendor: gpu.VendorNVIDIA, Encoder: gpu.EncoderNVENC},
		gpu.Software(),
	}
	opts := EncoderOptions(caps)
	require.Len(t, opts, 3)
	assert.Equal(t, config.EncoderAuto, opts[0].Value)
	assert.Contains(t, opts[0].Key, gpu.EncoderNVENC)
	assert.Equal(t, gpu.EncoderNVENC, opts[1].Value)
	assert.Equal(t, gpu.EncoderSoftware, opts[2].Value)
}

func TestNewSettingsForm(t *testing.T) {
	r := NewSettingsResult(config.Default(), "", "")
	assert.NotNil(t, NewSettingsForm([]gpu.Capability{gpu.Software()}, r))
}

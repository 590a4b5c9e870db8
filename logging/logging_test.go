package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimasjulianto/app-video-cutter/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, hclog.Debug, ParseLevel("debug"))
	assert.Equal(t, hclog.Warn, ParseLevel("warn"))
	assert.Equal(t, hclog.Off, ParseLevel("off"))
	assert.Equal(t, hclog.Info, ParseLevel("nonsense"))
}

func TestNew_Writer(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "warn"
	var buf bytes.Buffer

	sink, err := New(&cfg, Options{Output: &buf})
	require.NoError(t, err)
	defer sink.Close()

	sink.Logger.Info("hidden")
	sink.Logger.Warn("shown", "clip", 3)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "clip=3")
	assert.Contains(t, out, config.AppName)
}

func TestNew_File(t *testing.T) {
	cfg := config.Default()
	cfg.LogFile = filepath.Join(t.TempDir(), "logs", "run.log")

	sink, err := New(&cfg, Options{})
	require.NoError(t, err)
	sink.Logger.Info("to file")
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

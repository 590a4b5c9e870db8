// Package config holds runtime configuration: defaults, the optional YAML
// file, environment overrides, and validation. Command-line flags are applied
// on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppName names the config, data, and log directories.
const AppName = "video-cutter"

// EncoderAuto asks the runtime to pick the recommended encoder from the
// detected GPU capabilities.
const EncoderAuto = "auto"

// Worker bounds for the parallel encoder pool.
const (
	MinWorkers = 1
	MaxWorkers = 16
)

// MinClipDuration is the shortest clip length in seconds a run accepts.
const MinClipDuration = 1.0

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "off": true,
}

// ReclaimConfig toggles the individual post-run cleanup steps.
type ReclaimConfig struct {
	KillStray  bool `yaml:"kill_stray"`
	TrimMemory bool `yaml:"trim_memory"`
	ResetGPU   bool `yaml:"gpu_reset"`
}

// Config holds all runtime settings. It is built by [Default], overlaid by
// [Load], then mutated by CLI flags before being passed by pointer to the
// packages that need it.
type Config struct {
	// External binaries.
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	MpvPath     string `yaml:"mpv_path"`

	// Run parameters.
	Workers      int     `yaml:"workers"`       // Default: 4, range 1–16.
	ClipDuration float64 `yaml:"clip_duration"` // Seconds, >= 1. Default: 3.
	SkipDuration float64 `yaml:"skip_duration"` // Seconds. Default: 10.
	Encoder      string  `yaml:"encoder"`       // Encoder id or "auto".

	// Encode parameters shared by every profile.
	VideoBitrate string `yaml:"video_bitrate"` // Default: "5M".
	AudioBitrate string `yaml:"audio_bitrate"` // Default: "192k".
	Threads      int    `yaml:"threads"`       // ffmpeg -threads. Default: 4.

	// Logging and storage.
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	DBPath   string `yaml:"db_path"`

	Reclaim ReclaimConfig `yaml:"reclaim"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		FFmpegPath:   "ffmpeg",
		FFprobePath:  "ffprobe",
		MpvPath:      "mpv",
		Workers:      4,
		ClipDuration: 3,
		SkipDuration: 10,
		Encoder:      EncoderAuto,
		VideoBitrate: "5M",
		AudioBitrate: "192k",
		Threads:      4,
		LogLevel:     "info",
		Reclaim: ReclaimConfig{
			KillStray:  true,
			TrimMemory: true,
			ResetGPU:   true,
		},
	}
}

// DefaultPath returns the config file location, $XDG_CONFIG_HOME/video-cutter/config.yaml
// or the platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, "config.yaml"), nil
}

// DataDir returns the directory holding the database and default log file.
// It follows the ~/.local/share/<app> convention.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}

// Load returns the defaults overlaid with the YAML file at path (skipped when
// it does not exist) and then with VIDEO_CUTTER_* environment variables.
// An empty path means [DefaultPath].
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// mergeFile decodes the YAML file at path over c. Keys missing from the
// file keep their current values.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks ranges and formats and canonicalizes bitrate strings.
func (c *Config) Validate() error {
	if c.Workers < MinWorkers || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between %d and %d, got %d", MinWorkers, MaxWorkers, c.Workers)
	}
	if c.ClipDuration < MinClipDuration {
		return fmt.Errorf("clip duration must be at least %gs, got %g", MinClipDuration, c.ClipDuration)
	}
	if c.SkipDuration < 0 {
		return errors.New("skip duration must be >= 0")
	}
	if strings.TrimSpace(c.Encoder) == "" {
		return errors.New("encoder must not be empty (use 'auto' or an encoder id)")
	}
	if c.Threads <= 0 {
		return errors.New("threads must be > 0")
	}
	if c.FFmpegPath == "" || c.FFprobePath == "" {
		return errors.New("ffmpeg and ffprobe paths must not be empty")
	}

	vb, err := NormalizeBitrate(c.VideoBitrate)
	if err != nil {
		return fmt.Errorf("video bitrate: %w", err)
	}
	c.VideoBitrate = vb
	ab, err := NormalizeBitrate(c.AudioBitrate)
	if err != nil {
		return fmt.Errorf("audio bitrate: %w", err)
	}
	c.AudioBitrate = ab

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level %q (use trace, debug, info, warn, error, off)", c.LogLevel)
	}
	return nil
}

// NormalizeBitrate validates and canonicalizes a bitrate.
// Accepted forms: "192", "192k", "192K", "192kbps", "5M", "5m". Output is
// "<n>k" or "<n>M"; a bare number is taken as kbit/s.
func NormalizeBitrate(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", errors.New("bitrate must not be empty")
	}
	unit := "k"
	switch {
	case strings.HasSuffix(s, "kbps"):
		s = strings.TrimSuffix(s, "kbps")
	case strings.HasSuffix(s, "mbps"):
		s, unit = strings.TrimSuffix(s, "mbps"), "M"
	case strings.HasSuffix(s, "k"):
		s = strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		s, unit = strings.TrimSuffix(s, "m"), "M"
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid bitrate %q (use a positive value, e.g. 192k or 5M)", raw)
	}
	return fmt.Sprintf("%d%s", n, unit), nil
}

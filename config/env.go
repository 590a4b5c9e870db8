package config

import (
	"fmt"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VIDEO_CUTTER_"

// LoadDotEnv loads a .env file from the working directory when present.
// Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load() // best-effort: load .env if present
}

// ApplyEnv overlays VIDEO_CUTTER_* variables read through lookup (usually
// os.LookupEnv). Unset variables leave the field unchanged.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"FFMPEG":        &c.FFmpegPath,
		"FFPROBE":       &c.FFprobePath,
		"MPV":           &c.MpvPath,
		"ENCODER":       &c.Encoder,
		"VIDEO_BITRATE": &c.VideoBitrate,
		"AUDIO_BITRATE": &c.AudioBitrate,
		"LOG_LEVEL":     &c.LogLevel,
		"LOG_FILE":      &c.LogFile,
		"DB_PATH":       &c.DBPath,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"WORKERS": &c.Workers,
		"THREADS": &c.Threads,
	}
	for key, dst := range ints {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}

	floats := map[string]*float64{
		"CLIP_DURATION": &c.ClipDuration,
		"SKIP_DURATION": &c.SkipDuration,
	}
	for key, dst := range floats {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = f
	}

	bools := map[string]*bool{
		"KILL_STRAY":  &c.Reclaim.KillStray,
		"TRIM_MEMORY": &c.Reclaim.TrimMemory,
		"GPU_RESET":   &c.Reclaim.ResetGPU,
	}
	for key, dst := range bools {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
	}
	return nil
}

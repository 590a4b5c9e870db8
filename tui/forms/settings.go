package forms

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/dimasjulianto/app-video-cutter/config"
	"github.com/dimasjulianto/app-video-cutter/gpu"
	"github.com/dimasjulianto/app-video-cutter/pkg/timeutil"
)

// SettingsResult holds the values entered in the settings form. Durations
// stay as text until Durations parses them.
type SettingsResult struct {
	InputPath    string
	OutputRoot   string
	Title        string
	Workers      int
	ClipDuration string
	SkipDuration string
	Encoder      string
	Confirmed    bool
}

// NewSettingsResult pre-fills a result from the config and the last-used
// input and output locations.
func NewSettingsResult(cfg config.Config, lastInput, lastOutput string) *SettingsResult {
	return &SettingsResult{
		InputPath:    lastInput,
		OutputRoot:   lastOutput,
		Workers:      cfg.Workers,
		ClipDuration: timeutil.FormatSeconds(cfg.ClipDuration),
		SkipDuration: timeutil.FormatSeconds(cfg.SkipDuration),
		Encoder:      cfg.Encoder,
		Confirmed:    true,
	}
}

// Durations parses the clip and skip durations in seconds.
func (r *SettingsResult) Durations() (clipSecs, skipSecs float64, err error) {
	clipSecs, err = timeutil.ParseTimeToSeconds(r.ClipDuration)
	if err != nil {
		return 0, 0, fmt.Errorf("clip duration: %w", err)
	}
	skipSecs, err = timeutil.ParseTimeToSeconds(r.SkipDuration)
	if err != nil {
		return 0, 0, fmt.Errorf("skip duration: %w", err)
	}
	return clipSecs, skipSecs, nil
}

// NewSettingsForm creates the huh form that replaces the old settings
// window: input and output paths, worker count, durations and encoder.
// The result pointer is bound to the form fields and will be populated on submit.
func NewSettingsForm(caps []gpu.Capability, result *SettingsResult) *huh.Form {
	workerOpts := make([]huh.Option[int], 0, config.MaxWorkers)
	for n := config.MinWorkers; n <= config.MaxWorkers; n++ {
		workerOpts = append(workerOpts, huh.NewOption(fmt.Sprintf("%d", n), n))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Input video").
				Value(&result.InputPath).
				Validate(ValidateVideoPath),

			huh.NewInput().
				Title("Output folder").
				Description("Empty: a <name>-clips folder next to the video").
				Value(&result.OutputRoot),

			huh.NewInput().
				Title("Title").
				Description("Optional subfolder name").
				Value(&result.Title),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Parallel workers").
				Options(workerOpts...).
				Value(&result.Workers),

			huh.NewInput().
				Title("Clip duration").
				Description("Seconds or MM:SS").
				Value(&result.ClipDuration).
				Validate(ValidateClipDuration),

			huh.NewInput().
				Title("Skip between clips").
				Description("Seconds or MM:SS").
				Value(&result.SkipDuration).
				Validate(ValidateSkipDuration),

			huh.NewSelect[string]().
				Title("Encoder").
				Options(EncoderOptions(caps)...).
				Value(&result.Encoder),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Start cutting?").
				Affirmative("Start").
				Negative("Cancel").
				Value(&result.Confirmed),
		),
	).WithTheme(Theme())
}

// EncoderOptions lists "auto" followed by one option per capability.
func EncoderOptions(caps []gpu.Capability) []huh.Option[string] {
	rec := gpu.Recommend(caps)
	opts := []huh.Option[string]{
		huh.NewOption(fmt.Sprintf("Auto (%s)", rec.Encoder), config.EncoderAuto),
	}
	seen := map[string]bool{}
	for _, c := range caps {
		if seen[c.Encoder] {
			continue
		}
		seen[c.Encoder] = true
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s - %s", c.Name, c.Encoder), c.Encoder))
	}
	return opts
}

// ValidateVideoPath requires an existing regular file.
func ValidateVideoPath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("input video is required")
	}
	info, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("video file not found: %s", s)
	}
	if info.IsDir() {
		return errors.New("path is a directory, not a video file")
	}
	return nil
}

// ValidateClipDuration requires at least config.MinClipDuration seconds.
func ValidateClipDuration(s string) error {
	v, err := timeutil.ParseTimeToSeconds(s)
	if err != nil {
		return err
	}
	if v < config.MinClipDuration {
		return fmt.Errorf("clip duration must be at least %g second", config.MinClipDuration)
	}
	return nil
}

// ValidateSkipDuration requires a non-negative duration.
func ValidateSkipDuration(s string) error {
	v, err := timeutil.ParseTimeToSeconds(s)
	if err != nil {
		return err
	}
	if v < 0 {
		return errors.New("skip duration cannot be negative")
	}
	return nil
}

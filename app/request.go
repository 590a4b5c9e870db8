package app

import (
	"errors"
	"fmt"

	"github.com/dimasjulianto/app-video-cutter/config"
	"github.com/dimasjulianto/app-video-cutter/pkg/cliputil"
)

// Request describes one run.
type Request struct {
	InputPath string
	// OutputRoot is the folder clips are written to. Empty means a
	// "<input name>-clips" folder next to the input.
	OutputRoot string
	// Title, when set, adds a subfolder of that name under OutputRoot.
	Title string

	Encoder      string // encoder id or "auto"
	Workers      int
	ClipDuration float64
	SkipDuration float64
}

// NewRequest returns a request for input using the run parameters in cfg.
func NewRequest(cfg config.Config, input string) Request {
	return Request{
		InputPath:    input,
		Encoder:      cfg.Encoder,
		Workers:      cfg.Workers,
		ClipDuration: cfg.ClipDuration,
		SkipDuration: cfg.SkipDuration,
	}
}

// Validate checks the request before anything runs.
func (r Request) Validate() error {
	if r.InputPath == "" {
		return errors.New("no input video given")
	}
	if r.Workers < config.MinWorkers || r.Workers > config.MaxWorkers {
		return fmt.Errorf("workers must be between %d and %d, got %d", config.MinWorkers, config.MaxWorkers, r.Workers)
	}
	if r.ClipDuration < config.MinClipDuration {
		return fmt.Errorf("clip duration must be at least %gs, got %g", config.MinClipDuration, r.ClipDuration)
	}
	if r.SkipDuration < 0 {
		return errors.New("skip duration must be >= 0")
	}
	return nil
}

// ResolvedOutputDir returns the directory the clips are written to.
func (r Request) ResolvedOutputDir() string {
	return cliputil.ResolveOutputDir(r.InputPath, r.OutputRoot, r.Title)
}

// Package logging builds the hclog logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"

	"github.com/dimasjulianto/app-video-cutter/config"
)

// DefaultFileName is the log file written under the data dir when the
// terminal is owned by the progress view.
const DefaultFileName = "video-cutter.log"

// Sink is the logger plus whatever must be closed when the program exits.
type Sink struct {
	Logger hclog.Logger
	file   *os.File
}

// Close flushes and closes the log file, if one was opened.
func (s *Sink) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Options controls where log output goes.
type Options struct {
	// ToFile forces output into a file even when cfg.LogFile is empty.
	// The bubbletea view sets this so log lines do not tear the screen.
	ToFile bool
	// Output overrides the destination. Used by tests.
	Output io.Writer
}

// New returns a logger named after the app at the configured level.
// Output goes to cfg.LogFile when set (or opts.ToFile), otherwise stderr.
func New(cfg *config.Config, opts Options) (*Sink, error) {
	sink := &Sink{}
	out := opts.Output
	color := hclog.ColorOff

	if out == nil {
		path := cfg.LogFile
		if path == "" && opts.ToFile {
			dir, err := config.DataDir()
			if err != nil {
				return nil, fmt.Errorf("resolve log dir: %w", err)
			}
			path = filepath.Join(dir, DefaultFileName)
		}

		if path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("create log dir: %w", err)
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return nil, fmt.Errorf("open log file: %w", err)
			}
			sink.file = f
			out = f
		} else {
			out = os.Stderr
			if isatty.IsTerminal(os.Stderr.Fd()) {
				color = hclog.AutoColor
			}
		}
	}

	sink.Logger = hclog.New(&hclog.LoggerOptions{
		Name:   config.AppName,
		Level:  ParseLevel(cfg.LogLevel),
		Output: out,
		Color:  color,
	})
	return sink, nil
}

// ParseLevel maps a config level string to an hclog level. Unknown values
// fall back to info.
func ParseLevel(s string) hclog.Level {
	if s == "off" {
		return hclog.Off
	}
	lvl := hclog.LevelFromString(s)
	if lvl == hclog.NoLevel {
		return hclog.Info
	}
	return lvl
}

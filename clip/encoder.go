package clip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/dimasjulianto/app-video-cutter/pkg/timeutil"
)

// Encoder produces the output file for one clip. A nil error means the
// encoder process exited 0.
type Encoder interface {
	Encode(ctx context.Context, d Descriptor) error
}

// ClipEncodeError reports a clip whose encoder could not be started or
// exited non-zero.
type ClipEncodeError struct {
	Index    int
	Output   string
	ExitCode int // -1 when the process never ran
	Stderr   string
	Err      error
}

func (e *ClipEncodeError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("clip %d (%s): encoder exited with status %d", e.Index, e.Output, e.ExitCode)
	}
	return fmt.Sprintf("clip %d (%s): %v", e.Index, e.Output, e.Err)
}

func (e *ClipEncodeError) Unwrap() error { return e.Err }

// EncodeSettings are the parameters shared by every profile.
type EncodeSettings struct {
	Binary       string // ffmpeg executable
	VideoBitrate string // e.g. "5M"
	AudioBitrate string // e.g. "192k"
	Threads      int
}

// DefaultEncodeSettings returns the stock encode parameters.
func DefaultEncodeSettings() EncodeSettings {
	return EncodeSettings{
		Binary:       "ffmpeg",
		VideoBitrate: "5M",
		AudioBitrate: "192k",
		Threads:      4,
	}
}

// FFmpegEncoder runs one ffmpeg process per clip. Create one per run: the
// unknown-encoder warning is emitted once per instance.
type FFmpegEncoder struct {
	Settings EncodeSettings
	Registry *ProcessRegistry
	Logger   hclog.Logger

	warned sync.Map // encoder id -> struct{}
}

// NewFFmpegEncoder returns an encoder using settings. registry may be nil.
func NewFFmpegEncoder(settings EncodeSettings, registry *ProcessRegistry, logger hclog.Logger) *FFmpegEncoder {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &FFmpegEncoder{
		Settings: settings,
		Registry: registry,
		Logger:   logger.Named("encoder"),
	}
}

// Profile resolves the profile for id. Unknown ids fall back to the
// software profile with a single warning per id.
func (e *FFmpegEncoder) Profile(id string) Profile {
	p, fallback := ResolveProfile(id)
	if fallback {
		if _, loaded := e.warned.LoadOrStore(id, struct{}{}); !loaded {
			e.Logger.Warn("unknown encoder, falling back to software encoding",
				"encoder", id, "fallback", p.Encoder)
		}
	}
	return p
}

// Args returns the ffmpeg arguments (without the binary) for d.
func (e *FFmpegEncoder) Args(d Descriptor) []string {
	return BuildArgs(d, e.Profile(d.Encoder), e.Settings)
}

// BuildArgs assembles the ffmpeg command line for one clip: input seek and
// length first, then codec, bitrate and profile options for the output.
// Inputs without audio get -an instead of the audio codec options.
func BuildArgs(d Descriptor, p Profile, s EncodeSettings) []string {
	in := ffmpeg.KwArgs{
		"ss": d.StartTimestamp(),
		"t":  timeutil.FormatSeconds(d.Duration),
	}
	out := ffmpeg.KwArgs{
		"c:v":      p.Encoder,
		"preset":   p.Preset,
		"b:v":      s.VideoBitrate,
		"threads":  strconv.Itoa(s.Threads),
		"loglevel": "error",
		"y":        "",
	}
	if d.HasAudio {
		out["c:a"] = "aac"
		out["b:a"] = s.AudioBitrate
	} else {
		out["an"] = ""
	}
	if p.Tune != "" {
		out["tune"] = p.Tune
	}
	if p.QualityFlag != "" {
		out[p.QualityFlag] = p.QualityValue
	}

	return ffmpeg.Input(d.InputPath, in).Output(d.OutputPath, out).GetArgs()
}

// Encode runs ffmpeg for d and waits for it. The process is registered
// while it runs. Cancelling ctx kills it.
func (e *FFmpegEncoder) Encode(ctx context.Context, d Descriptor) error {
	args := e.Args(d)
	e.Logger.Debug("starting encoder", "clip", d.Index, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, e.Settings.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return &ClipEncodeError{Index: d.Index, Output: d.OutputPath, ExitCode: -1, Err: err}
	}
	if e.Registry != nil {
		e.Registry.Add(cmd.Process)
		defer e.Registry.Remove(cmd.Process.Pid)
	}

	if err := cmd.Wait(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &ClipEncodeError{
			Index:    d.Index,
			Output:   d.OutputPath,
			ExitCode: code,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}
	return nil
}

// Package probe reads the duration and audio presence of an input video with
// a single ffprobe JSON call.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultBinary is the ffprobe executable looked up on PATH.
const DefaultBinary = "ffprobe"

// VideoMetadata is what a run needs to know about its input.
type VideoMetadata struct {
	Duration float64 // seconds
	HasAudio bool
}

// ProbeError reports that the input could not be inspected: the tool failed,
// its output was not JSON, or the duration was missing.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Runner returns the raw ffprobe JSON for path.
type Runner func(ctx context.Context, path string) ([]byte, error)

// Inspector runs ffprobe through its Runner and parses the result.
type Inspector struct {
	Run Runner
}

// NewInspector returns an Inspector for the given ffprobe binary. An empty
// binary means DefaultBinary.
func NewInspector(binary string) *Inspector {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Inspector{Run: ExecRunner(binary)}
}

// Inspect probes path once. Any failure is returned as *ProbeError.
func (i *Inspector) Inspect(ctx context.Context, path string) (VideoMetadata, error) {
	if err := ctx.Err(); err != nil {
		return VideoMetadata{}, err
	}
	out, err := i.Run(ctx, path)
	if err != nil {
		return VideoMetadata{}, &ProbeError{Path: path, Err: err}
	}
	meta, err := ParseJSON(out)
	if err != nil {
		return VideoMetadata{}, &ProbeError{Path: path, Err: err}
	}
	return meta, nil
}

// ExecRunner returns a Runner that executes binary directly. Cancelling ctx
// kills the probe.
func ExecRunner(binary string) Runner {
	return func(ctx context.Context, path string) ([]byte, error) {
		cmd := exec.CommandContext(ctx, binary,
			"-show_format", "-show_streams",
			"-of", "json",
			path,
		)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		out, err := cmd.Output()
		if err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return nil, fmt.Errorf("%w: %s", err, msg)
			}
			return nil, err
		}
		return out, nil
	}
}

type ffprobeOutput struct {
	Format  *ffprobeFormat  `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration *string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
}

var errNoDuration = errors.New("format.duration missing")

// ParseJSON converts raw ffprobe output into VideoMetadata.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (VideoMetadata, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return VideoMetadata{}, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	if raw.Format == nil || raw.Format.Duration == nil {
		return VideoMetadata{}, errNoDuration
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(*raw.Format.Duration), 64)
	if err != nil {
		return VideoMetadata{}, fmt.Errorf("parse duration %q: %w", *raw.Format.Duration, err)
	}

	meta := VideoMetadata{Duration: d}
	for _, s := range raw.Streams {
		if s.CodecType == "audio" {
			meta.HasAudio = true
			break
		}
	}
	return meta, nil
}

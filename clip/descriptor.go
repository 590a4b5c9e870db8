package clip

import (
	"path/filepath"

	"github.com/dimasjulianto/app-video-cutter/pkg/timeutil"
)

// Descriptor is one planned output clip. It is created by [Plan] and never
// modified afterwards.
type Descriptor struct {
	Index      int // 1-based position in the plan
	InputPath  string
	OutputPath string
	Start      float64 // seconds from the beginning of the input
	Duration   float64 // seconds
	Encoder    string  // encoder identifier, e.g. "h264_nvenc"
	HasAudio   bool
}

// End returns the offset in seconds at which the clip stops.
func (d Descriptor) End() float64 {
	return d.Start + d.Duration
}

// StartTimestamp renders Start as H:MM:SS.mmm for ffmpeg's -ss option.
func (d Descriptor) StartTimestamp() string {
	return timeutil.FormatTimestamp(d.Start)
}

// Name returns the output file name without its directory.
func (d Descriptor) Name() string {
	return filepath.Base(d.OutputPath)
}

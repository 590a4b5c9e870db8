package clip

import (
	"errors"
	"fmt"
	"math"

	"github.com/dimasjulianto/app-video-cutter/pkg/cliputil"
)

// ErrInvalidPlan is returned by Plan when the clip or skip length is unusable.
var ErrInvalidPlan = errors.New("invalid clip plan")

// PlanRequest carries everything Plan needs besides the input duration.
type PlanRequest struct {
	InputPath    string
	OutputDir    string
	Encoder      string
	ClipDuration float64 // L, seconds, > 0
	SkipDuration float64 // G, seconds, >= 0
	HasAudio     bool
}

// Plan splits a video of the given duration into clips of at most
// ClipDuration seconds separated by SkipDuration-second gaps.
//
// Starting at 0, each step emits a clip of min(L, D-cursor) seconds and
// advances the cursor by the emitted length plus G. The last clip is
// truncated so it never runs past the end of the input. A non-positive
// duration yields no clips.
func Plan(req PlanRequest, duration float64) ([]Descriptor, error) {
	if req.ClipDuration <= 0 || math.IsNaN(req.ClipDuration) || math.IsInf(req.ClipDuration, 0) {
		return nil, fmt.Errorf("%w: clip duration must be > 0, got %v", ErrInvalidPlan, req.ClipDuration)
	}
	if req.SkipDuration < 0 || math.IsNaN(req.SkipDuration) || math.IsInf(req.SkipDuration, 0) {
		return nil, fmt.Errorf("%w: skip duration must be >= 0, got %v", ErrInvalidPlan, req.SkipDuration)
	}
	if duration <= 0 || math.IsNaN(duration) {
		return []Descriptor{}, nil
	}

	// First pass: offsets and lengths. The total is needed before names can
	// be assigned, since the index width depends on it.
	type span struct{ start, length float64 }
	var spans []span
	for cursor := 0.0; cursor < duration; {
		length := math.Min(req.ClipDuration, duration-cursor)
		spans = append(spans, span{start: cursor, length: length})
		cursor += length + req.SkipDuration
	}

	total := len(spans)
	clips := make([]Descriptor, total)
	for i, s := range spans {
		idx := i + 1
		clips[i] = Descriptor{
			Index:      idx,
			InputPath:  req.InputPath,
			OutputPath: cliputil.ClipPath(req.OutputDir, idx, total),
			Start:      s.start,
			Duration:   s.length,
			Encoder:    req.Encoder,
			HasAudio:   req.HasAudio,
		}
	}
	return clips, nil
}

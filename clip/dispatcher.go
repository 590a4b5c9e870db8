package clip

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

// Run statuses returned by RunResult.Status.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// RunResult is the aggregate outcome of one dispatch.
type RunResult struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int  // never launched because the run was cancelled
	Cancelled bool // cancelled with at least one clip skipped
}

// OK reports whether every planned clip was produced.
func (r RunResult) OK() bool {
	return !r.Cancelled && r.Succeeded == r.Total
}

// Status returns succeeded, failed or cancelled. A cancelled run is never
// reported as failed.
func (r RunResult) Status() string {
	switch {
	case r.Cancelled:
		return StatusCancelled
	case r.Succeeded == r.Total:
		return StatusSucceeded
	default:
		return StatusFailed
	}
}

// Dispatcher encodes clips on a bounded pool of workers.
type Dispatcher struct {
	Encoder  Encoder
	Workers  int
	Reporter Reporter // may be nil
	Logger   hclog.Logger
}

// Dispatch encodes clips with at most d.Workers encoders running at once
// and blocks until every launched clip has finished.
//
// Once ctx is done no further clip is launched; clips already encoding run
// to completion on a context that ignores the cancellation. The Reporter is
// called exactly once per launched clip, in completion order.
func (d *Dispatcher) Dispatch(ctx context.Context, clips []Descriptor) RunResult {
	logger := d.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	workers := d.Workers
	if workers < 1 {
		workers = 1
	}

	res := RunResult{Total: len(clips)}
	if len(clips) == 0 {
		return res
	}

	var (
		mu        sync.Mutex
		launched  int
		completed int
	)
	encodeCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(workers)

	for _, c := range clips {
		c := c
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// The slot may have been granted after cancellation.
			if ctx.Err() != nil {
				return nil
			}
			mu.Lock()
			launched++
			mu.Unlock()

			err := d.Encoder.Encode(encodeCtx, c)

			mu.Lock()
			defer mu.Unlock()
			completed++
			p := Progress{
				Completed: completed,
				Total:     res.Total,
				Clip:      c,
				Err:       err,
			}
			if err != nil {
				res.Failed++
				p.Message = fmt.Sprintf("Failed clip %d/%d", completed, res.Total)
				logEncodeFailure(logger, c, err)
			} else {
				res.Succeeded++
				p.Message = fmt.Sprintf("Processing clip %d/%d", completed, res.Total)
			}
			if d.Reporter != nil {
				d.Reporter.Report(p)
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are counted

	res.Skipped = res.Total - launched
	// A run that launched every clip before the cancel is not cancelled.
	res.Cancelled = ctx.Err() != nil && res.Skipped > 0
	return res
}

func logEncodeFailure(logger hclog.Logger, c Descriptor, err error) {
	args := []interface{}{"clip", c.Index, "output", c.OutputPath, "error", err}
	var ce *ClipEncodeError
	if errors.As(err, &ce) && ce.Stderr != "" {
		args = append(args, "stderr", ce.Stderr)
	}
	logger.Error("clip encode failed", args...)
}

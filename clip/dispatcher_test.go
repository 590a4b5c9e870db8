package clip

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEncoder records calls and the peak number of concurrent encodes.
type fakeEncoder struct {
	delay time.Duration
	fail  map[int]bool

	mu      sync.Mutex
	calls   []int
	running int32
	peak    int32
}

func (f *fakeEncoder) Encode(ctx context.Context, d Descriptor) error {
	n := atomic.AddInt32(&f.running, 1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}
	defer atomic.AddInt32(&f.running, -1)

	f.mu.Lock()
	f.calls = append(f.calls, d.Index)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[d.Index] {
		return &ClipEncodeError{Index: d.Index, Output: d.OutputPath, ExitCode: 1, Stderr: "boom"}
	}
	return nil
}

func (f *fakeEncoder) launched() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.calls...)
}

type recorder struct {
	mu     sync.Mutex
	events []Progress
}

func (r *recorder) Report(p Progress) {
	r.mu.Lock()
	r.events = append(r.events, p)
	r.mu.Unlock()
}

func planN(t *testing.T, n int) []Descriptor {
	t.Helper()
	clips, err := Plan(planReq(1, 0), float64(n))
	require.NoError(t, err)
	require.Len(t, clips, n)
	return clips
}

func TestDispatch_AllSucceed(t *testing.T) {
	enc := &fakeEncoder{}
	rec := &recorder{}
	d := &Dispatcher{Encoder: enc, Workers: 4, Reporter: rec}

	res := d.Dispatch(context.Background(), planN(t, 10))
	assert.Equal(t, RunResult{Total: 10, Succeeded: 10}, res)
	assert.True(t, res.OK())
	assert.Equal(t, StatusSucceeded, res.Status())
	assert.Len(t, rec.events, 10)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, enc.launched())
}

func TestDispatch_Empty(t *testing.T) {
	rec := &recorder{}
	d := &Dispatcher{Encoder: &fakeEncoder{}, Workers: 4, Reporter: rec}

	res := d.Dispatch(context.Background(), nil)
	assert.Equal(t, 0, res.Total)
	assert.True(t, res.OK())
	assert.Equal(t, StatusSucceeded, res.Status())
	assert.Empty(t, rec.events)
}

func TestDispatch_BoundedConcurrency(t *testing.T) {
	for _, workers := range []int{1, 2, 4} {
		enc := &fakeEncoder{delay: 5 * time.Millisecond}
		d := &Dispatcher{Encoder: enc, Workers: workers}

		res := d.Dispatch(context.Background(), planN(t, 12))
		assert.True(t, res.OK())
		assert.LessOrEqual(t, int(atomic.LoadInt32(&enc.peak)), workers)
		assert.GreaterOrEqual(t, int(atomic.LoadInt32(&enc.peak)), 1)
	}
}

func TestDispatch_PartialFailure(t *testing.T) {
	enc := &fakeEncoder{fail: map[int]bool{2: true, 4: true}}
	rec := &recorder{}
	d := &Dispatcher{Encoder: enc, Workers: 2, Reporter: rec}

	res := d.Dispatch(context.Background(), planN(t, 5))
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	assert.False(t, res.OK())
	assert.Equal(t, StatusFailed, res.Status())
	assert.Len(t, enc.launched(), 5, "siblings keep running after a failure")

	require.Len(t, rec.events, 5)
	var failed []int
	for _, e := range rec.events {
		if e.Err != nil {
			var ce *ClipEncodeError
			require.True(t, errors.As(e.Err, &ce))
			failed = append(failed, ce.Index)
		}
	}
	assert.ElementsMatch(t, []int{2, 4}, failed)
}

func TestDispatch_ProgressIsMonotonic(t *testing.T) {
	enc := &fakeEncoder{delay: time.Millisecond}
	rec := &recorder{}
	d := &Dispatcher{Encoder: enc, Workers: 4, Reporter: rec}

	d.Dispatch(context.Background(), planN(t, 20))
	require.Len(t, rec.events, 20)
	for i, e := range rec.events {
		assert.Equal(t, i+1, e.Completed)
		assert.Equal(t, 20, e.Total)
	}
}

func TestDispatch_CancelStopsNewLaunches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	enc := &fakeEncoder{}
	rec := &recorder{}
	reporter := MultiReporter{rec, ReporterFunc(func(p Progress) {
		if p.Completed == 2 {
			cancel()
		}
	})}
	d := &Dispatcher{Encoder: enc, Workers: 1, Reporter: reporter}

	res := d.Dispatch(ctx, planN(t, 5))
	assert.Equal(t, []int{1, 2}, enc.launched())
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 3, res.Skipped)
	assert.True(t, res.Cancelled)
	assert.False(t, res.OK())
	assert.Equal(t, StatusCancelled, res.Status())
	assert.Len(t, rec.events, 2)
}

func TestDispatch_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enc := &fakeEncoder{}
	res := (&Dispatcher{Encoder: enc, Workers: 4}).Dispatch(ctx, planN(t, 3))
	assert.Empty(t, enc.launched())
	assert.Equal(t, 3, res.Skipped)
	assert.Equal(t, StatusCancelled, res.Status())
}

// ctxEncoder blocks until released and reports whether its context was
// cancelled while it ran.
type ctxEncoder struct {
	started chan struct{}
	release chan struct{}
	sawDone atomic.Bool
}

func (e *ctxEncoder) Encode(ctx context.Context, d Descriptor) error {
	e.started <- struct{}{}
	<-e.release
	if ctx.Err() != nil {
		e.sawDone.Store(true)
	}
	return nil
}

func TestDispatch_InFlightClipFinishes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	enc := &ctxEncoder{started: make(chan struct{}, 1), release: make(chan struct{})}
	d := &Dispatcher{Encoder: enc, Workers: 1}

	clips := planN(t, 3)
	done := make(chan RunResult)
	go func() { done <- d.Dispatch(ctx, clips) }()

	<-enc.started
	cancel()
	close(enc.release)

	res := <-done
	assert.False(t, enc.sawDone.Load(), "in-flight encode must not see the cancellation")
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, StatusCancelled, res.Status())
}

func TestDispatch_CancelAfterLastLaunchIsNotCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := &Dispatcher{Encoder: &fakeEncoder{}, Workers: 1, Reporter: ReporterFunc(func(p Progress) {
		if p.Completed == p.Total {
			cancel()
		}
	})}
	res := d.Dispatch(ctx, planN(t, 3))
	assert.Equal(t, 3, res.Succeeded)
	assert.Zero(t, res.Skipped)
	assert.False(t, res.Cancelled)
	assert.Equal(t, StatusSucceeded, res.Status())
	assert.True(t, res.OK())
}

func TestLogReporter_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Info})
	p := Progress{Completed: 1, Total: 2, Message: "Processing clip 1/2", Clip: Descriptor{Index: 1}}

	LogReporter(logger, hclog.Debug).Report(p)
	assert.Empty(t, buf.String())

	LogReporter(logger, hclog.Info).Report(p)
	assert.Contains(t, buf.String(), "Processing clip 1/2")
}

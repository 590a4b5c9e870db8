package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimasjulianto/app-video-cutter/clip"
	"github.com/dimasjulianto/app-video-cutter/config"
	"github.com/dimasjulianto/app-video-cutter/db"
	"github.com/dimasjulianto/app-video-cutter/gpu"
	"github.com/dimasjulianto/app-video-cutter/probe"
	"github.com/dimasjulianto/app-video-cutter/reclaim"
)

type fakeInspector struct {
	meta probe.VideoMetadata
	err  error
}

func (f fakeInspector) Inspect(context.Context, string) (probe.VideoMetadata, error) {
	return f.meta, f.err
}

type fakeEncoder struct {
	mu    sync.Mutex
	clips []clip.Descriptor
	fail  map[int]bool
}

func (f *fakeEncoder) Encode(_ context.Context, d clip.Descriptor) error {
	f.mu.Lock()
	f.clips = append(f.clips, d)
	f.mu.Unlock()
	if f.fail[d.Index] {
		return &clip.ClipEncodeError{Index: d.Index, Output: d.OutputPath, ExitCode: 1}
	}
	return nil
}

type countingReclaimer struct {
	mu    sync.Mutex
	calls int
	warn  []reclaim.CleanupWarning
}

func (c *countingReclaimer) Reclaim(context.Context) []reclaim.CleanupWarning {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.warn
}

type staticProvider []gpu.Capability

func (s staticProvider) Capabilities(context.Context) []gpu.Capability { return s }

type fixture struct {
	rt        *Runtime
	encoder   *fakeEncoder
	reclaimer *countingReclaimer
	logs      *bytes.Buffer
	dir       string
}

func newFixture(t *testing.T, insp Inspector, caps ...gpu.Capability) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := db.OpenPath(filepath.Join(dir, "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	f := &fixture{encoder: &fakeEncoder{}, reclaimer: &countingReclaimer{}, logs: &bytes.Buffer{}, dir: dir}
	rt, err := New(config.Default(), Options{
		Logger:    hclog.New(&hclog.LoggerOptions{Output: f.logs, Level: hclog.Info}),
		Store:     store,
		Inspector: insp,
		Provider:  staticProvider(append(caps, gpu.Software())),
		Encoder:   f.encoder,
		Reclaimer: f.reclaimer,
	})
	require.NoError(t, err)
	t.Cleanup(rt.Shutdown)
	f.rt = rt
	return f
}

func (f *fixture) request() Request {
	req := NewRequest(config.Default(), filepath.Join(f.dir, "match.mp4"))
	req.OutputRoot = filepath.Join(f.dir, "out")
	return req
}

func TestRun_Success(t *testing.T) {
	f := newFixture(t, fakeInspector{meta: probe.VideoMetadata{Duration: 25, HasAudio: true}})

	var events []clip.Progress
	res, err := f.rt.Run(context.Background(), f.request(), clip.ReporterFunc(func(p clip.Progress) {
		events = append(events, p)
	}))
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, 2, res.Total)
	assert.Len(t, events, 2)
	assert.DirExists(t, filepath.Join(f.dir, "out"))
	assert.Equal(t, 1, f.reclaimer.calls)

	require.Len(t, f.encoder.clips, 2)
	starts := map[float64]bool{}
	for _, c := range f.encoder.clips {
		starts[c.Start] = true
		assert.Equal(t, gpu.EncoderSoftware, c.Encoder, "auto resolves to software without a GPU")
		assert.True(t, c.HasAudio)
	}
	assert.Equal(t, map[float64]bool{0: true, 13: true}, starts)

	v, ok, err := db.GetSetting(f.rt.Store(), db.KeyLastInputDir)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, f.dir, v)

	runs, err := db.RecentRuns(f.rt.Store(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, clip.StatusSucceeded, runs[0].Status)
	assert.Equal(t, 2, runs[0].Succeeded)
}

func TestRun_ZeroDuration(t *testing.T) {
	f := newFixture(t, fakeInspector{meta: probe.VideoMetadata{Duration: 0}})
	res, err := f.rt.Run(context.Background(), f.request(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.True(t, res.OK())
	assert.Empty(t, f.encoder.clips)
}

func TestRun_ProbeErrorAbortsBeforePlanning(t *testing.T) {
	perr := &probe.ProbeError{Path: "match.mp4", Err: errors.New("exit status 1")}
	f := newFixture(t, fakeInspector{err: perr})

	res, err := f.rt.Run(context.Background(), f.request(), nil)
	var pe *probe.ProbeError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 0, res.Total)
	assert.Empty(t, f.encoder.clips)
	assert.NoDirExists(t, filepath.Join(f.dir, "out"))
	assert.Equal(t, 1, f.reclaimer.calls, "cleanup runs even when the probe fails")
}

func TestRun_PartialFailure(t *testing.T) {
	f := newFixture(t, fakeInspector{meta: probe.VideoMetadata{Duration: 60}})
	f.encoder.fail = map[int]bool{2: true}

	res, err := f.rt.Run(context.Background(), f.request(), nil)
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, clip.StatusFailed, res.Status())
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, res.Total-1, res.Succeeded)
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t, fakeInspector{meta: probe.VideoMetadata{Duration: 60}})
	req := f.request()
	req.Workers = 1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	res, err := f.rt.Run(ctx, req, clip.ReporterFunc(func(p clip.Progress) {
		if p.Completed == 2 {
			cancel()
		}
	}))
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, clip.StatusCancelled, res.Status())
	assert.Len(t, f.encoder.clips, 2)
	assert.Equal(t, res.Total-2, res.Skipped)
	assert.Equal(t, 1, f.reclaimer.calls)

	runs, err := db.RecentRuns(f.rt.Store(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, clip.StatusCancelled, runs[0].Status)
}

func TestRun_CancelAfterEveryClipLaunchedSucceeds(t *testing.T) {
	f := newFixture(t, fakeInspector{meta: probe.VideoMetadata{Duration: 25}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	res, err := f.rt.Run(ctx, f.request(), clip.ReporterFunc(func(p clip.Progress) {
		if p.Completed == p.Total {
			cancel()
		}
	}))
	require.NoError(t, err)
	assert.Equal(t, clip.StatusSucceeded, res.Status())
	assert.Zero(t, res.Skipped)
}

func TestRun_RecordsEncoderActuallyUsed(t *testing.T) {
	f := newFixture(t, fakeInspector{meta: probe.VideoMetadata{Duration: 10}})
	req := f.request()
	req.Encoder = "h265_magic"

	_, err := f.rt.Run(context.Background(), req, nil)
	require.NoError(t, err)

	runs, err := db.RecentRuns(f.rt.Store(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, clip.SoftwareEncoder, runs[0].Encoder)
}

func TestRun_ClipLinesStayOutOfInfoWithReporter(t *testing.T) {
	f := newFixture(t, fakeInspector{meta: probe.VideoMetadata{Duration: 25}})
	_, err := f.rt.Run(context.Background(), f.request(), clip.ReporterFunc(func(clip.Progress) {}))
	require.NoError(t, err)
	assert.NotContains(t, f.logs.String(), "Processing clip")
	assert.Contains(t, f.logs.String(), "run finished")
}

func TestRun_ClipLinesLoggedWithoutReporter(t *testing.T) {
	f := newFixture(t, fakeInspector{meta: probe.VideoMetadata{Duration: 25}})
	_, err := f.rt.Run(context.Background(), f.request(), nil)
	require.NoError(t, err)
	assert.Contains(t, f.logs.String(), "Processing clip 2/2")
}

func TestRun_ReclaimWarningsDoNotChangeResult(t *testing.T) {
	f := newFixture(t, fakeInspector{meta: probe.VideoMetadata{Duration: 10}})
	f.reclaimer.warn = []reclaim.CleanupWarning{{Step: "reset gpu", Err: errors.New("busy")}}

	res, err := f.rt.Run(context.Background(), f.request(), nil)
	require.NoError(t, err)
	assert.True(t, res.OK())
}

func TestRun_InvalidRequest(t *testing.T) {
	f := newFixture(t, fakeInspector{meta: probe.VideoMetadata{Duration: 10}})
	req := f.request()
	req.Workers = 0
	_, err := f.rt.Run(context.Background(), req, nil)
	assert.Error(t, err)
	assert.Zero(t, f.reclaimer.calls)

	req = f.request()
	req.ClipDuration = 0.000001
	_, err = f.rt.Run(context.Background(), req, nil)
	assert.Error(t, err)
	assert.Empty(t, f.encoder.clips)
}

func TestResolveEncoder(t *testing.T) {
	nv := gpu.Capability{Name: "RTX", Vendor: gpu.VendorNVIDIA, Encoder: gpu.EncoderNVENC}
	f := newFixture(t, fakeInspector{}, nv)

	assert.Equal(t, gpu.EncoderNVENC, f.rt.ResolveEncoder(context.Background(), config.EncoderAuto))
	assert.Equal(t, gpu.EncoderNVENC, f.rt.ResolveEncoder(context.Background(), ""))
	assert.Equal(t, "h264_qsv", f.rt.ResolveEncoder(context.Background(), "h264_qsv"))
}

func TestShutdown_Idempotent(t *testing.T) {
	f := newFixture(t, fakeInspector{})
	f.rt.Shutdown()
	f.rt.Shutdown()
	assert.Equal(t, 1, f.reclaimer.calls)
	f.rt.ForceStop()
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 99
	_, err := New(cfg, Options{Logger: hclog.NewNullLogger()})
	assert.Error(t, err)
}

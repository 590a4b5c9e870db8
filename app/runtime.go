// Package app owns the long-lived pieces of a cutting run (logger, store,
// process registry, reclaimer, inspector and capability provider) and
// drives one run from probe to cleanup.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/dimasjulianto/app-video-cutter/clip"
	"github.com/dimasjulianto/app-video-cutter/config"
	"github.com/dimasjulianto/app-video-cutter/db"
	"github.com/dimasjulianto/app-video-cutter/gpu"
	"github.com/dimasjulianto/app-video-cutter/logging"
	"github.com/dimasjulianto/app-video-cutter/probe"
	"github.com/dimasjulianto/app-video-cutter/reclaim"
)

// ErrCancelled is returned by Run when the run was cancelled. It is a
// distinct outcome from failure.
var ErrCancelled = errors.New("run cancelled")

// Inspector reads the metadata of an input video.
type Inspector interface {
	Inspect(ctx context.Context, path string) (probe.VideoMetadata, error)
}

// Reclaimer releases resources after a run. Implementations must be safe
// to call more than once.
type Reclaimer interface {
	Reclaim(ctx context.Context) []reclaim.CleanupWarning
}

// Options replaces the components New would otherwise build from the
// config. Zero values mean "build the default".
type Options struct {
	Logger    hclog.Logger
	Store     *sql.DB
	Inspector Inspector
	Provider  gpu.Provider
	Encoder   clip.Encoder
	Reclaimer Reclaimer
	// LogToFile sends log output to a file; set while a full-screen view
	// owns the terminal.
	LogToFile bool
}

// Runtime is created once per process invocation and serves one run.
type Runtime struct {
	cfg       config.Config
	logger    hclog.Logger
	sink      *logging.Sink
	store     *sql.DB
	ownsStore bool
	registry  *clip.ProcessRegistry
	reclaimer Reclaimer
	inspector Inspector
	provider  gpu.Provider
	encoder   clip.Encoder

	shutdownOnce sync.Once
}

// New validates cfg and builds every component not supplied in opts.
// A store that cannot be opened is logged and the run proceeds without
// persisted state.
func New(cfg config.Config, opts Options) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	r := &Runtime{cfg: cfg, registry: clip.NewProcessRegistry()}

	r.logger = opts.Logger
	if r.logger == nil {
		sink, err := logging.New(&r.cfg, logging.Options{ToFile: opts.LogToFile})
		if err != nil {
			return nil, err
		}
		r.sink = sink
		r.logger = sink.Logger
	}

	r.store = opts.Store
	if r.store == nil {
		store, err := openStore(cfg.DBPath)
		if err != nil {
			r.logger.Warn("persisted state unavailable", "error", err)
		} else {
			r.store = store
			r.ownsStore = true
		}
	}

	r.inspector = opts.Inspector
	if r.inspector == nil {
		r.inspector = probe.NewInspector(cfg.FFprobePath)
	}
	r.provider = opts.Provider
	if r.provider == nil {
		r.provider = gpu.NewDetector(r.logger)
	}
	r.encoder = opts.Encoder
	r.reclaimer = opts.Reclaimer
	if r.reclaimer == nil {
		r.reclaimer = reclaim.New(cfg.Reclaim, cfg.FFmpegPath, r.registry, r.logger)
	}
	return r, nil
}

func openStore(path string) (*sql.DB, error) {
	if path == "" {
		return db.Open()
	}
	return db.OpenPath(path)
}

// Logger returns the runtime's logger.
func (r *Runtime) Logger() hclog.Logger { return r.logger }

// Store returns the persisted-state database, or nil when unavailable.
func (r *Runtime) Store() *sql.DB { return r.store }

// Config returns the validated configuration.
func (r *Runtime) Config() config.Config { return r.cfg }

// Capabilities lists the encoders detected on this machine.
func (r *Runtime) Capabilities(ctx context.Context) []gpu.Capability {
	return r.provider.Capabilities(ctx)
}

// ResolveEncoder maps "auto" (or empty) to the recommended encoder and
// returns any other identifier unchanged.
func (r *Runtime) ResolveEncoder(ctx context.Context, id string) string {
	if id != "" && id != config.EncoderAuto {
		return id
	}
	rec := gpu.Recommend(r.provider.Capabilities(ctx))
	r.logger.Info("selected encoder", "encoder", rec.Encoder, "device", rec.Name)
	return rec.Encoder
}

// Inspect probes the input video.
func (r *Runtime) Inspect(ctx context.Context, path string) (probe.VideoMetadata, error) {
	return r.inspector.Inspect(ctx, path)
}

// Run cuts req.InputPath into clips and reports each finished clip to rep,
// which may be nil. Clip failures are reported through the RunResult; the
// error is non-nil only when the run could not start (invalid request,
// probe failure, unusable output dir) or was cancelled (ErrCancelled).
// Resources are reclaimed before Run returns, whatever the outcome.
func (r *Runtime) Run(ctx context.Context, req Request, rep clip.Reporter) (clip.RunResult, error) {
	if err := req.Validate(); err != nil {
		return clip.RunResult{}, err
	}
	defer r.reclaim(context.WithoutCancel(ctx))

	started := time.Now()
	logger := r.logger.With("input", req.InputPath)

	encoder := r.ResolveEncoder(ctx, req.Encoder)
	// Unknown ids are encoded with the software profile; history records
	// the codec that actually ran.
	used, _ := clip.ResolveProfile(encoder)

	meta, err := r.inspector.Inspect(ctx, req.InputPath)
	if err != nil {
		if ctx.Err() != nil {
			return clip.RunResult{Cancelled: true}, ErrCancelled
		}
		logger.Error("cannot inspect input", "error", err)
		return clip.RunResult{}, err
	}
	logger.Info("video info", "duration", meta.Duration, "has_audio", meta.HasAudio)

	outDir := req.ResolvedOutputDir()
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return clip.RunResult{}, fmt.Errorf("create output dir: %w", err)
	}

	clips, err := clip.Plan(clip.PlanRequest{
		InputPath:    req.InputPath,
		OutputDir:    outDir,
		Encoder:      encoder,
		ClipDuration: req.ClipDuration,
		SkipDuration: req.SkipDuration,
		HasAudio:     meta.HasAudio,
	}, meta.Duration)
	if err != nil {
		return clip.RunResult{}, err
	}
	logger.Info("planned clips", "count", len(clips), "output", outDir, "workers", req.Workers, "encoder", used.Encoder)
	r.rememberPaths(req, outDir)

	// Per-clip lines go to Info only when nobody else shows progress.
	level := hclog.Info
	if rep != nil {
		level = hclog.Debug
	}
	disp := &clip.Dispatcher{
		Encoder:  r.newEncoder(),
		Workers:  req.Workers,
		Reporter: clip.MultiReporter{rep, clip.LogReporter(logger, level)},
		Logger:   logger,
	}
	res := disp.Dispatch(ctx, clips)

	logger.Info("run finished", "status", res.Status(),
		"succeeded", res.Succeeded, "failed", res.Failed, "skipped", res.Skipped, "total", res.Total)
	r.recordRun(req, outDir, used.Encoder, res, started)

	if res.Cancelled {
		return res, ErrCancelled
	}
	return res, nil
}

func (r *Runtime) newEncoder() clip.Encoder {
	if r.encoder != nil {
		return r.encoder
	}
	return clip.NewFFmpegEncoder(clip.EncodeSettings{
		Binary:       r.cfg.FFmpegPath,
		VideoBitrate: r.cfg.VideoBitrate,
		AudioBitrate: r.cfg.AudioBitrate,
		Threads:      r.cfg.Threads,
	}, r.registry, r.logger)
}

// rememberPaths stores the last-used input and output locations.
func (r *Runtime) rememberPaths(req Request, outDir string) {
	if r.store == nil {
		return
	}
	outRoot := req.OutputRoot
	if outRoot == "" {
		outRoot = filepath.Dir(outDir)
	}
	err := db.SetSettings(r.store, map[string]string{
		db.KeyLastInputVideo:   req.InputPath,
		db.KeyLastInputDir:     filepath.Dir(req.InputPath),
		db.KeyLastOutputFolder: outDir,
		db.KeyLastOutputDir:    outRoot,
	})
	if err != nil {
		r.logger.Warn("could not save last-used paths", "error", err)
	}
}

func (r *Runtime) recordRun(req Request, outDir, encoder string, res clip.RunResult, started time.Time) {
	if r.store == nil {
		return
	}
	finished := time.Now()
	err := db.InsertRun(r.store, &db.Run{
		InputPath:    req.InputPath,
		OutputDir:    outDir,
		Encoder:      encoder,
		ClipDuration: req.ClipDuration,
		SkipDuration: req.SkipDuration,
		Workers:      req.Workers,
		Total:        res.Total,
		Succeeded:    res.Succeeded,
		Failed:       res.Failed,
		Skipped:      res.Skipped,
		Status:       res.Status(),
		StartedAt:    started,
		FinishedAt:   &finished,
	})
	if err != nil {
		r.logger.Warn("could not record run history", "error", err)
	}
}

func (r *Runtime) reclaim(ctx context.Context) {
	for _, w := range r.reclaimer.Reclaim(ctx) {
		r.logger.Debug("cleanup warning", "step", w.Step, "error", w.Err)
	}
}

// ForceStop kills every encoder still running. Used on a second interrupt.
func (r *Runtime) ForceStop() {
	if n := r.registry.TerminateAll(); n > 0 {
		r.logger.Warn("force-stopped running encoders", "count", n)
	}
}

// Shutdown reclaims resources if Run did not already, then closes the store
// and the log file. Safe to call more than once.
func (r *Runtime) Shutdown() {
	r.shutdownOnce.Do(func() {
		r.reclaim(context.Background())
		if r.ownsStore && r.store != nil {
			if err := r.store.Close(); err != nil {
				r.logger.Warn("closing store", "error", err)
			}
		}
		if r.sink != nil {
			_ = r.sink.Close()
		}
	})
}

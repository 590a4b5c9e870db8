// Package reclaim releases what a run may have left behind: stray encoder
// processes, process and page-cache memory, and GPU state. Every step is
// best-effort; failures become warnings and never change a run's result.
package reclaim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/dimasjulianto/app-video-cutter/clip"
	"github.com/dimasjulianto/app-video-cutter/config"
)

// CleanupWarning records a cleanup step that did not complete.
type CleanupWarning struct {
	Step string
	Err  error
}

func (w CleanupWarning) Error() string {
	return fmt.Sprintf("cleanup %s: %v", w.Step, w.Err)
}

func (w CleanupWarning) Unwrap() error { return w.Err }

// Step is one named cleanup action.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Reclaimer runs its steps at most once.
type Reclaimer struct {
	Steps  []Step
	Logger hclog.Logger

	once     sync.Once
	warnings []CleanupWarning
}

// New returns a Reclaimer with the steps enabled in cfg. encoderBinary is
// the ffmpeg path or name used to recognise stray child processes.
func New(cfg config.ReclaimConfig, encoderBinary string, registry *clip.ProcessRegistry, logger hclog.Logger) *Reclaimer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("reclaim")

	var steps []Step
	if cfg.KillStray {
		k := &strayKiller{binary: encoderBinary, registry: registry, logger: logger}
		steps = append(steps, Step{Name: "terminate encoders", Run: k.run})
	}
	if cfg.TrimMemory {
		steps = append(steps, Step{Name: "release memory", Run: func(ctx context.Context) error {
			return trimMemory(ctx, logger)
		}})
	}
	if cfg.ResetGPU {
		steps = append(steps, Step{Name: "reset gpu", Run: func(ctx context.Context) error {
			return resetGPU(ctx, logger)
		}})
	}
	return &Reclaimer{Steps: steps, Logger: logger}
}

// Reclaim runs every step on the first call and returns the warnings it
// collected. Later calls do nothing and return the same warnings.
func (r *Reclaimer) Reclaim(ctx context.Context) []CleanupWarning {
	r.once.Do(func() {
		logger := r.Logger
		if logger == nil {
			logger = hclog.NewNullLogger()
		}
		for _, s := range r.Steps {
			if err := runStep(ctx, s); err != nil {
				w := CleanupWarning{Step: s.Name, Err: err}
				r.warnings = append(r.warnings, w)
				logger.Warn("cleanup step failed", "step", s.Name, "error", err)
			}
		}
		logger.Info("system resources cleanup completed", "warnings", len(r.warnings))
	})
	return r.warnings
}

// runStep converts a panic in a step into an error.
func runStep(ctx context.Context, s Step) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return s.Run(ctx)
}

type strayKiller struct {
	binary   string
	registry *clip.ProcessRegistry
	logger   hclog.Logger
}

// run kills registered encoders, then any remaining child process of this
// program whose executable name matches the encoder binary.
func (k *strayKiller) run(ctx context.Context) error {
	if k.registry != nil {
		if n := k.registry.TerminateAll(); n > 0 {
			k.logger.Info("terminated registered encoders", "count", n)
		}
	}

	self, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return err
	}
	children, err := self.ChildrenWithContext(ctx)
	if errors.Is(err, process.ErrorNoChildren) {
		return nil
	}
	if err != nil {
		return err
	}

	var errs []error
	for _, c := range children {
		name, err := c.NameWithContext(ctx)
		if err != nil || !MatchesBinary(name, k.binary) {
			continue
		}
		if err := c.KillWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kill pid %d: %w", c.Pid, err))
			continue
		}
		k.logger.Info("terminated stray encoder", "pid", c.Pid, "name", name)
	}
	return errors.Join(errs...)
}

// MatchesBinary reports whether a process name refers to binary, which may
// be a bare name or a path. The .exe suffix and case are ignored.
func MatchesBinary(name, binary string) bool {
	norm := func(s string) string {
		if i := strings.LastIndexAny(s, `/\`); i >= 0 {
			s = s[i+1:]
		}
		return strings.TrimSuffix(strings.ToLower(s), ".exe")
	}
	return name != "" && binary != "" && norm(name) == norm(binary)
}

// trimMemory returns freed heap to the OS and applies the platform-specific
// release. Memory use before and after is logged.
func trimMemory(ctx context.Context, logger hclog.Logger) error {
	before, _ := mem.VirtualMemoryWithContext(ctx)

	debug.FreeOSMemory()
	err := releasePlatformMemory(logger)

	after, _ := mem.VirtualMemoryWithContext(ctx)
	if before != nil && after != nil {
		logger.Debug("memory released",
			"used_before_mb", before.Used>>20,
			"used_after_mb", after.Used>>20,
			"available_mb", after.Available>>20)
	}
	return err
}

// resetGPU asks nvidia-smi to reset the GPU. Machines without nvidia-smi
// are skipped silently.
func resetGPU(ctx context.Context, logger hclog.Logger) error {
	path, err := exec.LookPath("nvidia-smi")
	if err != nil {
		logger.Debug("nvidia-smi not found, skipping GPU reset")
		return nil
	}
	out, err := exec.CommandContext(ctx, path, "-r").CombinedOutput()
	if err != nil {
		return fmt.Errorf("nvidia-smi -r: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

package clip

import (
	"os"
	"sort"
	"sync"
)

// ProcessRegistry tracks encoder processes that are currently running so a
// hard stop or the reclaimer can terminate them.
type ProcessRegistry struct {
	mu    sync.Mutex
	procs map[int]*os.Process
}

// NewProcessRegistry returns an empty registry.
func NewProcessRegistry() *ProcessRegistry {
	return &ProcessRegistry{procs: make(map[int]*os.Process)}
}

// Add registers a started process.
func (r *ProcessRegistry) Add(p *os.Process) {
	if p == nil {
		return
	}
	r.mu.Lock()
	r.procs[p.Pid] = p
	r.mu.Unlock()
}

// Remove forgets the process with the given pid.
func (r *ProcessRegistry) Remove(pid int) {
	r.mu.Lock()
	delete(r.procs, pid)
	r.mu.Unlock()
}

// PIDs returns the registered pids in ascending order.
func (r *ProcessRegistry) PIDs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	pids := make([]int, 0, len(r.procs))
	for pid := range r.procs {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}

// Len returns the number of registered processes.
func (r *ProcessRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.procs)
}

// TerminateAll kills every registered process and returns how many kill
// signals were delivered. Processes stay registered until their owner
// calls Remove after Wait returns.
func (r *ProcessRegistry) TerminateAll() int {
	r.mu.Lock()
	procs := make([]*os.Process, 0, len(r.procs))
	for _, p := range r.procs {
		procs = append(procs, p)
	}
	r.mu.Unlock()

	killed := 0
	for _, p := range procs {
		if err := p.Kill(); err == nil {
			killed++
		}
	}
	return killed
}

// Package sampler captures point-in-time resource usage of the current process.
package sampler

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/gosniff/gosniff/internal/safe"
)

// Snapshot is a point-in-time reading of the process's resource counters.
// A counter unavailable on the current platform reads as zero.
type Snapshot struct {
	// CPUTime is cumulative user+system CPU time in seconds.
	CPUTime float64
	// MemoryBytes is the resident set size.
	MemoryBytes uint64
	// IOOps is the cumulative count of read and write operations.
	IOOps uint64
}

// Delta holds the difference between an entry baseline and an exit snapshot.
// Memory and IO are signed: memory can shrink during a call and IO counters
// may reset.
type Delta struct {
	CPUSeconds  float64
	MemoryBytes int64
	IOOps       int64
}

// Sampler reads CPU, memory, and I/O counters for the current process via
// gopsutil. It is called twice per traced invocation, so each Sample is a small
// fixed number of /proc reads (or platform equivalents).
//
// Unavailable counters degrade to zero with a single process-lifetime warning
// per counter kind rather than failing the traced call.
type Sampler struct {
	proc   *process.Process
	logger zerolog.Logger
}

// Warn-once guards live at process scope: a fresh Sampler is built for every
// session, but counter availability is a property of the platform and does not
// change between sessions.
var (
	procWarn sync.Once
	cpuWarn  sync.Once
	memWarn  sync.Once
	ioWarn   sync.Once
)

// New creates a sampler bound to the current process.
func New(logger zerolog.Logger) *Sampler {
	s := &Sampler{
		logger: logger.With().Str("component", "sampler").Logger(),
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		procWarn.Do(func() {
			s.logger.Warn().Err(err).Msg("Process handle unavailable, resource usage will read as zero")
		})
		return s
	}
	s.proc = proc
	return s
}

// Sample captures the current resource counters. It never fails; counters that
// cannot be read report zero.
func (s *Sampler) Sample() Snapshot {
	var snap Snapshot
	if s.proc == nil {
		return snap
	}

	if times, err := s.proc.Times(); err != nil {
		cpuWarn.Do(func() {
			s.logger.Warn().Err(err).Msg("CPU time unavailable, cpu_usage will read as zero")
		})
	} else {
		snap.CPUTime = times.User + times.System
	}

	if mem, err := s.proc.MemoryInfo(); err != nil {
		memWarn.Do(func() {
			s.logger.Warn().Err(err).Msg("Memory info unavailable, memory_usage will read as zero")
		})
	} else {
		snap.MemoryBytes = mem.RSS
	}

	if io, err := s.proc.IOCounters(); err != nil {
		ioWarn.Do(func() {
			s.logger.Warn().Err(err).Msg("IO counters unavailable, io_operations will read as zero")
		})
	} else {
		snap.IOOps = io.ReadCount + io.WriteCount
	}

	return snap
}

// Diff computes the usage attributed to a call from its entry baseline and exit
// snapshot.
func Diff(entry, exit Snapshot) Delta {
	return Delta{
		CPUSeconds:  exit.CPUTime - entry.CPUTime,
		MemoryBytes: safe.CounterDelta(entry.MemoryBytes, exit.MemoryBytes),
		IOOps:       safe.CounterDelta(entry.IOOps, exit.IOOps),
	}
}

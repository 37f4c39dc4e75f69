package record

import (
	"sync"
	"time"

	"github.com/gosniff/gosniff/internal/sampler"
)

// BuildInput carries everything the builder needs from a closed frame.
type BuildInput struct {
	Function string
	Args     map[string]any
	Stack    []string
	Elapsed  time.Duration
	Usage    sampler.Delta
	Children []*CallRecord
}

// Builder assembles call records and owns the session's root-level sequence.
// Root appends are serialized: two top-level calls on different goroutines can
// complete simultaneously.
type Builder struct {
	policy CapturePolicy

	mu    sync.Mutex
	roots []*CallRecord
}

// NewBuilder creates a builder with the given capture policy.
func NewBuilder(policy CapturePolicy) *Builder {
	return &Builder{policy: policy}
}

// Build assembles the immutable record for a closed frame. Args are expected to
// be already captured per policy at frame-open time; the return value is
// captured here so a type-only policy reflects the value actually returned.
func (b *Builder) Build(in BuildInput, out Outcome) *CallRecord {
	calledBy := RootMarker
	if n := len(in.Stack); n > 1 {
		calledBy = in.Stack[n-2]
	}

	children := in.Children
	if children == nil {
		children = []*CallRecord{}
	}

	return &CallRecord{
		Function:      in.Function,
		EntryArgs:     in.Args,
		ReturnValue:   b.policy.CaptureReturn(out),
		ExecutionTime: in.Elapsed.Seconds(),
		CPUUsage:      in.Usage.CPUSeconds,
		MemoryUsage:   in.Usage.MemoryBytes,
		IOOperations:  in.Usage.IOOps,
		CallStack:     in.Stack,
		CalledBy:      calledBy,
		CallsMade:     children,
	}
}

// AddRoot appends a completed top-level record to the session's root sequence.
func (b *Builder) AddRoot(rec *CallRecord) {
	b.mu.Lock()
	b.roots = append(b.roots, rec)
	b.mu.Unlock()
}

// Roots returns the completed root-level records in completion order.
func (b *Builder) Roots() []*CallRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*CallRecord, len(b.roots))
	copy(out, b.roots)
	return out
}

// Policy returns the builder's capture policy.
func (b *Builder) Policy() CapturePolicy {
	return b.policy
}

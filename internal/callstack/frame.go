package callstack

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gosniff/gosniff/internal/record"
	"github.com/gosniff/gosniff/internal/sampler"
)

// Frame is the transient bookkeeping for one open monitored call. It is owned
// by the stack of the goroutine that opened it and never outlives the call:
// pushed at entry, popped exactly once at exit, normal or not.
type Frame struct {
	fn       string
	goID     uint64
	begin    time.Time
	baseline sampler.Snapshot
	args     map[string]any

	// stack is the call stack from the execution root to this call, inclusive,
	// frozen at the moment the frame was opened.
	stack []string

	parent *Frame
	closed atomic.Bool

	mu       sync.Mutex
	children []*record.CallRecord
}

// Function returns the frame's function identity.
func (f *Frame) Function() string {
	return f.fn
}

// Stack returns the frame's call stack snapshot.
func (f *Frame) Stack() []string {
	return f.stack
}

// appendChild records a completed child in completion order. Sibling completions
// are serialized; the critical section is a single append.
func (f *Frame) appendChild(rec *record.CallRecord) {
	f.mu.Lock()
	f.children = append(f.children, rec)
	f.mu.Unlock()
}

func (f *Frame) takeChildren() []*record.CallRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.children
}

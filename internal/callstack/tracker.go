// Package callstack maintains per-goroutine stacks of open call frames.
package callstack

import (
	"errors"
	"sync"
	"time"

	"github.com/gosniff/gosniff/internal/record"
	"github.com/gosniff/gosniff/internal/sampler"
)

// ErrCorruptStack reports a frame closed out of order. This is an internal
// consistency fault: the session fails closed rather than emitting corrupted
// records silently.
var ErrCorruptStack = errors.New("callstack: frame closed out of order")

// Tracker maintains one LIFO stack of open frames per goroutine. Each stack is
// mutated by its owning goroutine only, so the per-stack mutex is uncontended
// during tracing; it exists so Drain can force-close frames left open when a
// session stops while calls are in flight. Record placement happens while the
// mutex is held: a frame is popped and its record attached to the parent (or
// the root sequence) in one critical section, so an exit cannot interleave
// with Drain truncating the same stack and orphan its record.
type Tracker struct {
	builder *record.Builder
	stacks  sync.Map // goroutine id -> *contextStack
}

type contextStack struct {
	mu      sync.Mutex
	drained bool
	frames  []*Frame
}

// NewTracker creates a tracker that hands completed frames to builder.
func NewTracker(builder *record.Builder) *Tracker {
	return &Tracker{builder: builder}
}

// Enter opens a frame for the current goroutine: captures the entry timestamp,
// resource baseline, and argument snapshot, pushes the frame, and returns it.
// Args must already be captured per the session's policy. Returns nil once the
// tracker has been drained.
func (t *Tracker) Enter(fn string, args map[string]any, baseline sampler.Snapshot) *Frame {
	gid := goroutineID()

	v, _ := t.stacks.LoadOrStore(gid, &contextStack{})
	cs := v.(*contextStack)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.drained {
		return nil
	}

	var parent *Frame
	if n := len(cs.frames); n > 0 {
		parent = cs.frames[n-1]
	}

	fr := &Frame{
		fn:       fn,
		goID:     gid,
		begin:    time.Now(),
		baseline: baseline,
		args:     args,
		parent:   parent,
	}
	if parent != nil {
		fr.stack = append(append(make([]string, 0, len(parent.stack)+1), parent.stack...), fn)
	} else {
		fr.stack = []string{fn}
	}

	cs.frames = append(cs.frames, fr)
	return fr
}

// Exit closes a frame: pops it, computes resource deltas against the exit
// snapshot, assembles the record, and places it in its parent's child list or
// the session root sequence.
//
// Exactly one record is produced per Enter. A frame already force-closed by
// Drain is a no-op here. A frame that is open but not the top of its
// goroutine's stack returns ErrCorruptStack.
func (t *Tracker) Exit(fr *Frame, out record.Outcome, exit sampler.Snapshot) (*record.CallRecord, error) {
	if fr == nil {
		return nil, nil
	}

	v, ok := t.stacks.Load(fr.goID)
	if !ok {
		if fr.closed.Load() {
			return nil, nil
		}
		return nil, ErrCorruptStack
	}
	cs := v.(*contextStack)

	cs.mu.Lock()
	if cs.drained {
		cs.mu.Unlock()
		return nil, nil
	}
	n := len(cs.frames)
	if n == 0 || cs.frames[n-1] != fr {
		cs.mu.Unlock()
		if fr.closed.Load() {
			return nil, nil
		}
		return nil, ErrCorruptStack
	}
	if !fr.closed.CompareAndSwap(false, true) {
		cs.mu.Unlock()
		return nil, nil
	}
	cs.frames[n-1] = nil
	cs.frames = cs.frames[:n-1]
	rec := t.close(fr, out, exit)
	cs.mu.Unlock()

	return rec, nil
}

// CurrentStack returns the ordered function identities open on the current
// goroutine, from the execution root to the innermost call.
func (t *Tracker) CurrentStack() []string {
	v, ok := t.stacks.Load(goroutineID())
	if !ok {
		return nil
	}
	cs := v.(*contextStack)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.frames) == 0 {
		return nil
	}
	top := cs.frames[len(cs.frames)-1]
	out := make([]string, len(top.stack))
	copy(out, top.stack)
	return out
}

// OpenFrames reports the number of frames currently open across all goroutines.
func (t *Tracker) OpenFrames() int {
	total := 0
	t.stacks.Range(func(_, v any) bool {
		cs := v.(*contextStack)
		cs.mu.Lock()
		total += len(cs.frames)
		cs.mu.Unlock()
		return true
	})
	return total
}

// Drain force-closes every open frame across all goroutines, innermost first,
// recording each as truncated with the given exit snapshot. Calls still running
// when their session stops are recorded here; their own Exit later becomes a
// no-op. Each stack is drained in one critical section, so once Drain returns
// no in-flight Exit can still place a record. Returns the truncated records in
// the order they were closed.
func (t *Tracker) Drain(exit sampler.Snapshot) []*record.CallRecord {
	var truncated []*record.CallRecord
	t.stacks.Range(func(_, v any) bool {
		cs := v.(*contextStack)
		cs.mu.Lock()
		cs.drained = true
		for i := len(cs.frames) - 1; i >= 0; i-- {
			fr := cs.frames[i]
			if !fr.closed.CompareAndSwap(false, true) {
				continue
			}
			truncated = append(truncated, t.close(fr, record.Outcome{Truncated: true}, exit))
		}
		cs.frames = nil
		cs.mu.Unlock()
		return true
	})
	return truncated
}

// close assembles and places the record for a popped frame. The caller holds
// the frame's stack mutex, which serializes placement against Drain.
func (t *Tracker) close(fr *Frame, out record.Outcome, exit sampler.Snapshot) *record.CallRecord {
	rec := t.builder.Build(record.BuildInput{
		Function: fr.fn,
		Args:     fr.args,
		Stack:    fr.stack,
		Elapsed:  time.Since(fr.begin),
		Usage:    sampler.Diff(fr.baseline, exit),
		Children: fr.takeChildren(),
	}, out)

	if fr.parent != nil && !fr.parent.closed.Load() {
		fr.parent.appendChild(rec)
	} else {
		t.builder.AddRoot(rec)
	}
	return rec
}

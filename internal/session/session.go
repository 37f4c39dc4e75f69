package session

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gosniff/gosniff/internal/callstack"
	"github.com/gosniff/gosniff/internal/config"
	"github.com/gosniff/gosniff/internal/filter"
	"github.com/gosniff/gosniff/internal/record"
	"github.com/gosniff/gosniff/internal/sampler"
	"github.com/gosniff/gosniff/internal/sink"
)

// Controller is the process-wide state machine governing the tracing lifecycle.
// It is either Idle (no session) or Active (one session). Transitions are
// atomic with respect to concurrent Start/Stop calls; instrumented calls read
// one consistent session snapshot per call via the atomic pointer.
type Controller struct {
	mu     sync.Mutex // serializes Start/Stop transitions
	out    io.Writer
	logger zerolog.Logger
	sess   atomic.Pointer[Session]
}

// Session is one active tracing lifecycle instance: the in-progress call
// stacks, the completed root-level records, and the sinks receiving output.
// It is created at Start and discarded at Stop; sessions are never reused.
type Session struct {
	id      uuid.UUID
	started time.Time
	cfg     *config.Config

	filter   *filter.Filter
	sampler  *sampler.Sampler
	builder  *record.Builder
	tracker  *callstack.Tracker
	dispatch *sink.Dispatcher

	logFile *os.File

	// draining gates new frames while Stop force-closes open ones.
	draining atomic.Bool
	// failed marks the session dead after an internal-consistency fault.
	failed atomic.Bool
}

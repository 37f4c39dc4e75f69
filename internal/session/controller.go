// Package session implements the tracing session lifecycle: the Idle/Active
// state machine, the entry/exit boundary consulted by instrumented functions,
// and the flush of the accumulated call graph to sinks on stop.
package session

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gosniff/gosniff/internal/callstack"
	"github.com/gosniff/gosniff/internal/config"
	gserrors "github.com/gosniff/gosniff/internal/errors"
	"github.com/gosniff/gosniff/internal/filter"
	"github.com/gosniff/gosniff/internal/logging"
	"github.com/gosniff/gosniff/internal/record"
	"github.com/gosniff/gosniff/internal/sampler"
	"github.com/gosniff/gosniff/internal/sink"
)

// ActiveCall is the handle an instrumented function holds between entry and
// exit. It pins the session observed at entry so a call sees one consistent
// view of the lifecycle for its whole duration.
type ActiveCall struct {
	sess  *Session
	frame *callstack.Frame
}

// Option configures a Controller.
type Option func(*Controller)

// WithOutput redirects console log output, primarily for tests.
func WithOutput(w io.Writer) Option {
	return func(c *Controller) {
		c.out = w
	}
}

// NewController creates an idle controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{out: os.Stdout}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewWithComponent(logging.Config{
		Level:  "info",
		Pretty: true,
		Output: c.out,
	}, "session")
	return c
}

// Start transitions Idle -> Active with the given configuration. A nil config
// is loaded from gosniff.yaml in the working directory. Invalid configuration
// fails fast and the session does not become active. Start while already
// active is a recoverable no-op. A config with Enable=false makes Start a
// no-op as well.
func (c *Controller) Start(cfg *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.Load() != nil {
		c.logger.Warn().Msg("Tracing session already active, start ignored")
		return nil
	}

	if cfg == nil {
		loaded, err := config.LoadDefault()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if !cfg.Enable {
		c.logger.Warn().Msg("Tracing is disabled in config, no calls will be recorded")
		return nil
	}

	logCfg := logging.Config{Level: cfg.LogLevel, Pretty: true, Output: c.out}

	var (
		sessLogger zerolog.Logger
		logFile    *os.File
	)
	switch {
	case !cfg.EnableLog:
		sessLogger = zerolog.Nop()
	case cfg.LogToFile:
		var err error
		sessLogger, logFile, err = logging.NewWithFile(logCfg, cfg.LogFilename)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
	default:
		sessLogger = logging.New(logCfg)
	}

	var sinks []sink.Sink
	if cfg.EnableLog {
		sinks = append(sinks, sink.NewLogSink(sessLogger))
	}
	if cfg.EnableJSON {
		sinks = append(sinks, sink.NewJSONSink(cfg.JSONFilename, c.logger))
	}

	builder := record.NewBuilder(record.CapturePolicy{
		EntryValues:  cfg.EntryValue,
		ReturnValues: cfg.ReturnValue,
	})

	s := &Session{
		id:       uuid.New(),
		started:  time.Now(),
		cfg:      cfg,
		filter:   filter.New(cfg.IgnoredModules),
		sampler:  sampler.New(c.logger),
		builder:  builder,
		tracker:  callstack.NewTracker(builder),
		dispatch: sink.NewDispatcher(sinks...),
		logFile:  logFile,
	}

	c.sess.Store(s)
	c.logger.Info().
		Str("session_id", s.id.String()).
		Bool("entry_value", cfg.EntryValue).
		Bool("return_value", cfg.ReturnValue).
		Strs("ignored_modules", cfg.IgnoredModules).
		Msg("Tracing session started")
	return nil
}

// Stop transitions Active -> Idle: force-closes frames still open as truncated,
// hands the completed root sequence to the sinks, and clears the session.
// Stop while idle is a no-op.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.sess.Load()
	if s == nil {
		return nil
	}
	return c.stopLocked(s)
}

// stopLocked drains and flushes s. Caller holds c.mu.
func (c *Controller) stopLocked(s *Session) error {
	c.sess.Store(nil)
	s.draining.Store(true)

	truncated := s.tracker.Drain(s.sampler.Sample())
	for _, rec := range truncated {
		s.dispatch.Emit(rec)
	}

	rep := &record.Report{
		SessionID: s.id.String(),
		StartedAt: s.started,
		StoppedAt: time.Now(),
		Calls:     s.builder.Roots(),
	}
	err := s.dispatch.Flush(rep)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to flush records to sinks")
	}

	if s.logFile != nil {
		gserrors.DeferClose(c.logger, s.logFile, "failed to close log file")
	}

	c.logger.Info().
		Str("session_id", rep.SessionID).
		Int("root_calls", len(rep.Calls)).
		Int("truncated", len(truncated)).
		Msg("Tracing session stopped")
	return err
}

// Active reports whether a session is currently active.
func (c *Controller) Active() bool {
	return c.sess.Load() != nil
}

// Enter is the instrumentation entry boundary. It returns nil when the call is
// not to be traced: no active session, origin filtered out, or the session is
// draining. args is only invoked when the call is actually traced.
func (c *Controller) Enter(name, origin string, args func() map[string]any) *ActiveCall {
	s := c.sess.Load()
	if s == nil || s.draining.Load() || s.failed.Load() {
		return nil
	}
	if !s.filter.ShouldTrace(origin) {
		return nil
	}

	captured := s.builder.Policy().CaptureArgs(args())
	frame := s.tracker.Enter(name, captured, s.sampler.Sample())
	if frame == nil {
		return nil
	}
	return &ActiveCall{sess: s, frame: frame}
}

// Exit is the instrumentation exit boundary. It is safe to call with a nil
// handle. Stack corruption fails the session closed: tracing stops and what
// has accumulated so far is flushed.
func (c *Controller) Exit(call *ActiveCall, out record.Outcome) {
	if call == nil {
		return
	}
	s := call.sess

	rec, err := s.tracker.Exit(call.frame, out, s.sampler.Sample())
	if err != nil {
		c.logger.Error().Err(err).Str("function", call.frame.Function()).
			Msg("Internal consistency fault, stopping tracing session")
		c.failClose(s)
		return
	}
	if rec != nil && !s.draining.Load() {
		s.dispatch.Emit(rec)
	}
}

// failClose stops the session after an internal-consistency fault.
func (c *Controller) failClose(s *Session) {
	if !s.failed.CompareAndSwap(false, true) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Load() == s {
		_ = c.stopLocked(s)
	}
}

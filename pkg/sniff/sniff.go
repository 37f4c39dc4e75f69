// Package sniff is the public surface of the gosniff call profiler.
//
// Functions are made traceable explicitly, by wrapping them once at points the
// host program controls:
//
//	add := sniff.Func2("add", add, "a", "b")
//
// Wrapped functions run unmodified until a session is active. A session is
// started and stopped process-wide:
//
//	sniff.Session(func() {
//		add(3, 7)
//	})
//
// On session stop the recorded call graph is flushed to the configured sinks
// (per-call log lines and a JSON report). The profiling layer only observes:
// it never alters return values, panics, or control flow of the wrapped
// program.
package sniff

import (
	"sync"

	"github.com/gosniff/gosniff/internal/config"
	"github.com/gosniff/gosniff/internal/session"
)

// Config contains tracing session options. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// Enable is the master switch; when false, Start is a no-op.
	Enable bool

	// LogLevel is the minimum severity for the log sink (trace, debug, info,
	// warn, error).
	LogLevel string

	// LogToFile mirrors log output to LogFilename.
	LogToFile   bool
	LogFilename string

	// EntryValue captures actual argument values; when false only type names
	// are recorded.
	EntryValue bool

	// ReturnValue captures actual return values; when false only type names
	// are recorded.
	ReturnValue bool

	// EnableLog emits a log line per completed call.
	EnableLog bool

	// EnableJSON writes the JSON report to JSONFilename on session stop.
	EnableJSON   bool
	JSONFilename string

	// IgnoredModules lists origins excluded from tracing: package import
	// paths or their base names.
	IgnoredModules []string
}

// DefaultConfig returns the built-in defaults, the same ones applied when
// gosniff.yaml is absent.
func DefaultConfig() Config {
	return fromInternal(config.Default())
}

func fromInternal(c *config.Config) Config {
	return Config{
		Enable:         c.Enable,
		LogLevel:       c.LogLevel,
		LogToFile:      c.LogToFile,
		LogFilename:    c.LogFilename,
		EntryValue:     c.EntryValue,
		ReturnValue:    c.ReturnValue,
		EnableLog:      c.EnableLog,
		EnableJSON:     c.EnableJSON,
		JSONFilename:   c.JSONFilename,
		IgnoredModules: c.IgnoredModules,
	}
}

func (c Config) internal() *config.Config {
	return &config.Config{
		Enable:         c.Enable,
		LogLevel:       c.LogLevel,
		LogToFile:      c.LogToFile,
		LogFilename:    c.LogFilename,
		EntryValue:     c.EntryValue,
		ReturnValue:    c.ReturnValue,
		EnableLog:      c.EnableLog,
		EnableJSON:     c.EnableJSON,
		JSONFilename:   c.JSONFilename,
		IgnoredModules: c.IgnoredModules,
	}
}

var (
	ctrlMu      sync.Mutex
	defaultCtrl *session.Controller
)

// controller returns the process-wide session controller, creating it on
// first use.
func controller() *session.Controller {
	ctrlMu.Lock()
	defer ctrlMu.Unlock()
	if defaultCtrl == nil {
		defaultCtrl = session.NewController()
	}
	return defaultCtrl
}

// Start activates tracing with configuration loaded from gosniff.yaml in the
// working directory (defaults apply when the file is absent, GOSNIFF_*
// environment variables override). Calling Start while a session is active is
// a recoverable no-op.
func Start() error {
	return controller().Start(nil)
}

// StartWith activates tracing with an explicit configuration.
func StartWith(cfg Config) error {
	return controller().Start(cfg.internal())
}

// Stop deactivates tracing: open calls are recorded as truncated, the call
// graph is flushed to the sinks, and the session is cleared. Stop while idle
// is a no-op.
func Stop() error {
	return controller().Stop()
}

// Active reports whether a tracing session is currently active.
func Active() bool {
	return controller().Active()
}

// Session runs fn inside a scoped tracing session: Start on entry, Stop on
// exit. Stop runs even when fn panics, and the panic then propagates to the
// caller unchanged.
func Session(fn func()) error {
	if err := Start(); err != nil {
		return err
	}
	defer Stop() //nolint:errcheck // flush errors are logged by the controller
	fn()
	return nil
}

// SessionWith is Session with an explicit configuration.
func SessionWith(cfg Config, fn func()) error {
	if err := StartWith(cfg); err != nil {
		return err
	}
	defer Stop() //nolint:errcheck // flush errors are logged by the controller
	fn()
	return nil
}

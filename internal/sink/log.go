package sink

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gosniff/gosniff/internal/record"
)

// LogSink writes one log line per completed call and a summary line at flush.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a log sink on the given logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{
		logger: logger.With().Str("component", "log_sink").Logger(),
	}
}

// Emit logs a completed call with its arguments, return value, and usage.
func (s *LogSink) Emit(rec *record.CallRecord) {
	s.logger.Info().
		Str("function", rec.Function).
		Str("args", fmt.Sprintf("%v", rec.EntryArgs)).
		Str("return", fmt.Sprintf("%v", rec.ReturnValue)).
		Float64("execution_time", rec.ExecutionTime).
		Float64("cpu_usage", rec.CPUUsage).
		Int64("memory_usage", rec.MemoryUsage).
		Int64("io_operations", rec.IOOperations).
		Str("called_by", rec.CalledBy).
		Msg("Call completed")
}

// Flush logs the session summary.
func (s *LogSink) Flush(rep *record.Report) error {
	s.logger.Info().
		Str("session_id", rep.SessionID).
		Int("root_calls", len(rep.Calls)).
		Msg("Tracing session flushed")
	return nil
}

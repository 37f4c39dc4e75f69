package sink

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	gserrors "github.com/gosniff/gosniff/internal/errors"
	"github.com/gosniff/gosniff/internal/record"
)

// JSONSink persists the full report as an indented JSON document on flush.
// Per-call emission is a no-op; the report is written once, at session stop.
type JSONSink struct {
	path   string
	logger zerolog.Logger
}

// NewJSONSink creates a JSON sink writing to the given path.
func NewJSONSink(path string, logger zerolog.Logger) *JSONSink {
	return &JSONSink{
		path:   path,
		logger: logger.With().Str("component", "json_sink").Logger(),
	}
}

// Emit is a no-op; the JSON report is written at flush.
func (s *JSONSink) Emit(_ *record.CallRecord) {}

// Flush writes the report to the sink's file, replacing any previous report.
func (s *JSONSink) Flush(rep *record.Report) error {
	data, err := json.MarshalIndent(rep, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", s.path, err)
	}

	_, werr := f.Write(data)
	if werr != nil {
		gserrors.DeferClose(s.logger, f, "failed to close report file")
		return fmt.Errorf("failed to write report file %s: %w", s.path, werr)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report file %s: %w", s.path, err)
	}

	s.logger.Info().Str("path", s.path).Int("root_calls", len(rep.Calls)).Msg("JSON report written")
	return nil
}

package sink

import (
	"golang.org/x/sync/errgroup"

	"github.com/gosniff/gosniff/internal/record"
)

// Dispatcher fans records out to the configured sinks. Emit is synchronous and
// in-line with the monitored call's exit path; Flush runs the sinks
// concurrently since file and log flushing are independent.
type Dispatcher struct {
	sinks []Sink
}

// NewDispatcher creates a dispatcher over the given sinks.
func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks}
}

// Emit forwards a completed record to every sink.
func (d *Dispatcher) Emit(rec *record.CallRecord) {
	for _, s := range d.sinks {
		s.Emit(rec)
	}
}

// Flush hands the finished report to every sink and returns the first error.
func (d *Dispatcher) Flush(rep *record.Report) error {
	var g errgroup.Group
	for _, s := range d.sinks {
		s := s
		g.Go(func() error {
			return s.Flush(rep)
		})
	}
	return g.Wait()
}

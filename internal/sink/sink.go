// Package sink delivers finished call records to their consumers: the log
// stream and the JSON report file. Sinks consume the stable record shape; they
// never influence how records are assembled.
package sink

import (
	"github.com/gosniff/gosniff/internal/record"
)

// Sink receives completed call records. Emit is called once per completed call
// in completion order; Flush is called once with the full report when the
// session stops.
type Sink interface {
	Emit(rec *record.CallRecord)
	Flush(rep *record.Report) error
}

// Package record defines the structured result of a completed monitored call
// and the builder that assembles the session's call graph.
package record

import (
	"time"
)

// RootMarker is the called_by value of a top-level call.
const RootMarker = "<root>"

// TruncatedMarker is the return_value of a call force-closed at session stop.
const TruncatedMarker = "<truncated>"

// CallRecord is the immutable result of one completed monitored call. It is
// built fully formed when the call's frame closes; CallsMade holds the
// children's records in completion order, collected by the frame while the
// call was open.
type CallRecord struct {
	Function      string         `json:"function"`
	EntryArgs     map[string]any `json:"entry_args"`
	ReturnValue   any            `json:"return_value"`
	ExecutionTime float64        `json:"execution_time"`
	CPUUsage      float64        `json:"cpu_usage"`
	MemoryUsage   int64          `json:"memory_usage"`
	IOOperations  int64          `json:"io_operations"`
	CallStack     []string       `json:"call_stack"`
	CalledBy      string         `json:"called_by"`
	CallsMade     []*CallRecord  `json:"calls_made"`
}

// Report is the shape handed to sinks when a session stops.
type Report struct {
	SessionID string        `json:"session_id"`
	StartedAt time.Time     `json:"started_at"`
	StoppedAt time.Time     `json:"stopped_at"`
	Calls     []*CallRecord `json:"calls"`
}

package record

import (
	"fmt"
)

// Outcome describes how a monitored call ended.
type Outcome struct {
	// Value is the call's return value on a normal exit.
	Value any
	// Err is a non-nil returned error, recorded as an error marker.
	Err error
	// PanicValue is the recovered panic value when the call unwound abnormally.
	PanicValue any
	// Panicked distinguishes panic(nil) from no panic.
	Panicked bool
	// Truncated marks a call force-closed because the session stopped first.
	Truncated bool
}

// CapturePolicy controls whether argument and return values are stored as full
// values or as type names only.
type CapturePolicy struct {
	EntryValues  bool
	ReturnValues bool
}

// CaptureArgs renders an argument map according to the policy. The input map is
// never retained; captured values are detached from the caller's data.
func (p CapturePolicy) CaptureArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for name, v := range args {
		if p.EntryValues {
			out[name] = captureValue(v)
		} else {
			out[name] = typeName(v)
		}
	}
	return out
}

// CaptureReturn renders the return value for an outcome. Error and truncation
// markers take precedence over the value policy.
func (p CapturePolicy) CaptureReturn(out Outcome) any {
	switch {
	case out.Truncated:
		return TruncatedMarker
	case out.Panicked:
		return fmt.Sprintf("<error: %v>", out.PanicValue)
	case out.Err != nil:
		return fmt.Sprintf("<error: %v>", out.Err)
	case p.ReturnValues:
		return captureValue(out.Value)
	default:
		return typeName(out.Value)
	}
}

// captureValue keeps primitive values as-is and renders everything else to a
// string, so records stay immutable and JSON-encodable no matter what the
// monitored program passes around.
func captureValue(v any) any {
	switch v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

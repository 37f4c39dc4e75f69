package sniff

import (
	"fmt"
	"reflect"

	"github.com/gosniff/gosniff/internal/record"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Instrument wraps an arbitrary function with call interception via
// reflection, for signatures the typed Func/Proc wrappers do not cover. The
// caller type-asserts the result back:
//
//	sum := sniff.Instrument("sum", sum, "xs").(func([]int) int)
//
// When the function's last return type is error, a non-nil error is recorded
// as the call's error marker. Prefer the typed wrappers on hot paths; the
// reflective wrapper allocates per call. Instrument panics if fn is not a
// function.
func Instrument(name string, fn any, argNames ...string) any {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("sniff: Instrument requires a func, got %T", fn))
	}

	t := v.Type()
	origin := funcOrigin(fn)
	names := paramNames(argNames, t.NumIn())
	hasErr := t.NumOut() > 0 && t.Out(t.NumOut()-1) == errType

	invoke := v.Call
	if t.IsVariadic() {
		invoke = v.CallSlice
	}

	wrapped := reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
		call := controller().Enter(name, origin, func() map[string]any {
			m := make(map[string]any, len(in))
			for i, arg := range in {
				m[names[i]] = arg.Interface()
			}
			return m
		})
		if call == nil {
			return invoke(in)
		}
		done := false
		defer closeOnUnwind(call, &done)
		results := invoke(in)
		done = true
		controller().Exit(call, outcomeFromResults(results, hasErr))
		return results
	})
	return wrapped.Interface()
}

// outcomeFromResults converts reflective return values into an outcome. A
// single non-error result is recorded as-is; multiple results are recorded as
// an ordered list.
func outcomeFromResults(results []reflect.Value, hasErr bool) record.Outcome {
	var out record.Outcome

	vals := results
	if hasErr {
		if e := results[len(results)-1].Interface(); e != nil {
			out.Err = e.(error)
		}
		vals = results[:len(results)-1]
	}

	switch len(vals) {
	case 0:
	case 1:
		out.Value = vals[0].Interface()
	default:
		many := make([]any, len(vals))
		for i, r := range vals {
			many[i] = r.Interface()
		}
		out.Value = many
	}
	return out
}

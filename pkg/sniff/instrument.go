package sniff

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/gosniff/gosniff/internal/record"
	"github.com/gosniff/gosniff/internal/session"
)

// funcOrigin derives the package import path a function is declared in, used
// by the ignored-origins filter. Unresolvable functions report an empty
// origin, which is never filtered.
func funcOrigin(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return ""
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}

	// e.g. "github.com/acme/app/db.Get", "main.add", "net/http.(*Client).Do".
	full := rf.Name()
	slash := strings.LastIndexByte(full, '/')
	dot := strings.IndexByte(full[slash+1:], '.')
	if dot < 0 {
		return full
	}
	return full[:slash+1+dot]
}

// paramNames fills in fallback parameter names where the caller gave none.
// Go reflection cannot recover declared parameter names, so entry_args keys
// come from the instrumentation site.
func paramNames(names []string, arity int) []string {
	out := make([]string, arity)
	for i := range out {
		if i < len(names) && names[i] != "" {
			out[i] = names[i]
		} else {
			out[i] = fmt.Sprintf("arg%d", i)
		}
	}
	return out
}

// closeOnUnwind closes the frame when the wrapped call unwinds without
// reaching its normal exit. Must be invoked directly by defer so recover sees
// the in-flight panic. The panic is re-raised unchanged.
func closeOnUnwind(call *session.ActiveCall, done *bool) {
	if *done {
		return
	}
	if r := recover(); r != nil {
		controller().Exit(call, record.Outcome{Panicked: true, PanicValue: r})
		panic(r)
	}
	// Unwinding without a panic value: runtime.Goexit.
	controller().Exit(call, record.Outcome{Truncated: true})
}

// Func0 wraps a niladic function returning one value.
func Func0[R any](name string, fn func() R) func() R {
	origin := funcOrigin(fn)
	return func() R {
		call := controller().Enter(name, origin, func() map[string]any {
			return map[string]any{}
		})
		if call == nil {
			return fn()
		}
		done := false
		defer closeOnUnwind(call, &done)
		out := fn()
		done = true
		controller().Exit(call, record.Outcome{Value: out})
		return out
	}
}

// Func1 wraps a one-argument function returning one value. argNames supplies
// the entry_args keys; missing names default to arg0, arg1, ...
func Func1[A1, R any](name string, fn func(A1) R, argNames ...string) func(A1) R {
	origin := funcOrigin(fn)
	names := paramNames(argNames, 1)
	return func(a1 A1) R {
		call := controller().Enter(name, origin, func() map[string]any {
			return map[string]any{names[0]: a1}
		})
		if call == nil {
			return fn(a1)
		}
		done := false
		defer closeOnUnwind(call, &done)
		out := fn(a1)
		done = true
		controller().Exit(call, record.Outcome{Value: out})
		return out
	}
}

// Func2 wraps a two-argument function returning one value.
func Func2[A1, A2, R any](name string, fn func(A1, A2) R, argNames ...string) func(A1, A2) R {
	origin := funcOrigin(fn)
	names := paramNames(argNames, 2)
	return func(a1 A1, a2 A2) R {
		call := controller().Enter(name, origin, func() map[string]any {
			return map[string]any{names[0]: a1, names[1]: a2}
		})
		if call == nil {
			return fn(a1, a2)
		}
		done := false
		defer closeOnUnwind(call, &done)
		out := fn(a1, a2)
		done = true
		controller().Exit(call, record.Outcome{Value: out})
		return out
	}
}

// Func3 wraps a three-argument function returning one value.
func Func3[A1, A2, A3, R any](name string, fn func(A1, A2, A3) R, argNames ...string) func(A1, A2, A3) R {
	origin := funcOrigin(fn)
	names := paramNames(argNames, 3)
	return func(a1 A1, a2 A2, a3 A3) R {
		call := controller().Enter(name, origin, func() map[string]any {
			return map[string]any{names[0]: a1, names[1]: a2, names[2]: a3}
		})
		if call == nil {
			return fn(a1, a2, a3)
		}
		done := false
		defer closeOnUnwind(call, &done)
		out := fn(a1, a2, a3)
		done = true
		controller().Exit(call, record.Outcome{Value: out})
		return out
	}
}

// Func0E wraps a niladic function returning a value and an error. A non-nil
// error is recorded as the call's error marker and returned unchanged.
func Func0E[R any](name string, fn func() (R, error)) func() (R, error) {
	origin := funcOrigin(fn)
	return func() (R, error) {
		call := controller().Enter(name, origin, func() map[string]any {
			return map[string]any{}
		})
		if call == nil {
			return fn()
		}
		done := false
		defer closeOnUnwind(call, &done)
		out, err := fn()
		done = true
		controller().Exit(call, record.Outcome{Value: out, Err: err})
		return out, err
	}
}

// Func1E wraps a one-argument function returning a value and an error.
func Func1E[A1, R any](name string, fn func(A1) (R, error), argNames ...string) func(A1) (R, error) {
	origin := funcOrigin(fn)
	names := paramNames(argNames, 1)
	return func(a1 A1) (R, error) {
		call := controller().Enter(name, origin, func() map[string]any {
			return map[string]any{names[0]: a1}
		})
		if call == nil {
			return fn(a1)
		}
		done := false
		defer closeOnUnwind(call, &done)
		out, err := fn(a1)
		done = true
		controller().Exit(call, record.Outcome{Value: out, Err: err})
		return out, err
	}
}

// Func2E wraps a two-argument function returning a value and an error.
func Func2E[A1, A2, R any](name string, fn func(A1, A2) (R, error), argNames ...string) func(A1, A2) (R, error) {
	origin := funcOrigin(fn)
	names := paramNames(argNames, 2)
	return func(a1 A1, a2 A2) (R, error) {
		call := controller().Enter(name, origin, func() map[string]any {
			return map[string]any{names[0]: a1, names[1]: a2}
		})
		if call == nil {
			return fn(a1, a2)
		}
		done := false
		defer closeOnUnwind(call, &done)
		out, err := fn(a1, a2)
		done = true
		controller().Exit(call, record.Outcome{Value: out, Err: err})
		return out, err
	}
}

// Proc0 wraps a niladic function with no return value.
func Proc0(name string, fn func()) func() {
	origin := funcOrigin(fn)
	return func() {
		call := controller().Enter(name, origin, func() map[string]any {
			return map[string]any{}
		})
		if call == nil {
			fn()
			return
		}
		done := false
		defer closeOnUnwind(call, &done)
		fn()
		done = true
		controller().Exit(call, record.Outcome{})
	}
}

// Proc1 wraps a one-argument function with no return value.
func Proc1[A1 any](name string, fn func(A1), argNames ...string) func(A1) {
	origin := funcOrigin(fn)
	names := paramNames(argNames, 1)
	return func(a1 A1) {
		call := controller().Enter(name, origin, func() map[string]any {
			return map[string]any{names[0]: a1}
		})
		if call == nil {
			fn(a1)
			return
		}
		done := false
		defer closeOnUnwind(call, &done)
		fn(a1)
		done = true
		controller().Exit(call, record.Outcome{})
	}
}

// Proc2 wraps a two-argument function with no return value.
func Proc2[A1, A2 any](name string, fn func(A1, A2), argNames ...string) func(A1, A2) {
	origin := funcOrigin(fn)
	names := paramNames(argNames, 2)
	return func(a1 A1, a2 A2) {
		call := controller().Enter(name, origin, func() map[string]any {
			return map[string]any{names[0]: a1, names[1]: a2}
		})
		if call == nil {
			fn(a1, a2)
			return
		}
		done := false
		defer closeOnUnwind(call, &done)
		fn(a1, a2)
		done = true
		controller().Exit(call, record.Outcome{})
	}
}

// Package filter decides whether a call site is eligible for tracing.
package filter

import (
	"path"
)

// Filter excludes calls whose origin matches a configured set of ignored origins.
// An origin is the import path of the package a function is declared in. Entries
// match either the full import path ("net/http") or its base element ("http").
//
// Filtering is call-site-local: a filtered-out call produces no record, but calls
// made from within it are still evaluated independently.
type Filter struct {
	ignored map[string]struct{}
}

// New creates a filter from the list of ignored origins.
func New(origins []string) *Filter {
	ignored := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o != "" {
			ignored[o] = struct{}{}
		}
	}
	return &Filter{ignored: ignored}
}

// ShouldTrace reports whether a call from the given origin should be traced.
// It has no side effects and is safe for concurrent use.
func (f *Filter) ShouldTrace(origin string) bool {
	if len(f.ignored) == 0 {
		return true
	}
	if _, ok := f.ignored[origin]; ok {
		return false
	}
	if _, ok := f.ignored[path.Base(origin)]; ok {
		return false
	}
	return true
}

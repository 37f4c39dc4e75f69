// Package fixture provides instrumentable helper functions used by tests in
// other packages, where a function origin distinct from the test's own package
// is needed.
package fixture

// Add returns a+b.
func Add(a, b int) int {
	return a + b
}

// Chain invokes inner and returns its result. Instrumenting Chain and inner
// separately lets tests observe how filtering treats a call versus the calls
// made from within it.
func Chain(inner func() int) int {
	return inner()
}

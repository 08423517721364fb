// Package invariant provides panic-on-violation assertion helpers used
// to document and enforce internal contracts that calling code must
// never be able to violate through the public API (as opposed to
// exprerr, which reports conditions callers can legitimately trigger).
package invariant

import "fmt"

// Precondition panics if cond is false. Call at the top of a function
// to assert something the caller must have guaranteed.
func Precondition(cond bool, format string, args ...any) {
	if !cond {
		panic("precondition violated: " + fmt.Sprintf(format, args...))
	}
}

// Postcondition panics if cond is false. Call before returning to
// assert something the function itself must have guaranteed.
func Postcondition(cond bool, format string, args ...any) {
	if !cond {
		panic("postcondition violated: " + fmt.Sprintf(format, args...))
	}
}

// Invariant panics if cond is false. Call mid-function to assert a
// condition that must hold at that point regardless of caller input.
func Invariant(cond bool, format string, args ...any) {
	if !cond {
		panic("invariant violated: " + fmt.Sprintf(format, args...))
	}
}

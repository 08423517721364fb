// Package env ships reference Environment implementations of the
// engine's host-value collaborator (spec.md §6). The Environment
// interface below restates that contract; eval and vm each declare
// their own copy, so callers embedding the engine may supply their
// own implementation instead.
package env

import "github.com/exprflow/exprflow/value"

// Environment is the host contract the tree-walker and VM read from
// and write to: get(name) -> optional value, put(name, value) -> bool
// (false signals "variable rejected/unknown", surfaced as a
// RuntimeError — spec.md §6).
type Environment interface {
	Get(name string) (value.Value, bool)
	Put(name string, v value.Value) bool
}

// BeforeExecuteHook is an optional capability an Environment may
// implement: a runner that detects it may call BeforeExecute with the
// union of variable names an execution will touch, aborting the run
// if it returns false (spec.md §6).
type BeforeExecuteHook interface {
	BeforeExecute(names []string) bool
}

package datum

import "errors"

// Sentinel errors for the low-level mutators in list.go and array.go.
// Primitives translate these into proper FCError flow-control values
// (see package primitive); the datum package itself stays error-taxonomy
// agnostic so it has no dependency on the evaluator.
var (
	ErrMutateEmptyList = errors.New("datum: cannot mutate the empty list")
	ErrIndexRange      = errors.New("datum: index out of range")
	ErrWouldCycle      = errors.New("datum: operation would introduce a cycle")
)

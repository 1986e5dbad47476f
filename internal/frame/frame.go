// Package frame implements the dynamically-scoped variable model and
// call-frame stack described in spec 4.2/4.7: MAKE sets the nearest
// enclosing LOCAL of that name, or the global if there is none; TEST
// records its result in the current call frame (the global frame at
// top level), and IFTRUE/IFFALSE see the nearest result recorded in
// that frame or any frame further out, including from nested calls.
package frame

import (
	"strings"

	"github.com/dcorbin/qlogo/internal/datum"
)

func key(name string) string {
	if datum.CaseIgnoreDP {
		return strings.ToUpper(name)
	}
	return name
}

// Frame is one call's activation record.
type Frame struct {
	ProcName string
	Node     *datum.Node // the OpCall node that invoked this frame, for diagnostics

	vars   map[string]datum.Datum
	local  map[string]bool
	tested *bool

	// Explicit carries the "?" template slots bound by APPLY/MAP/?n,
	// per spec 4.8.
	Explicit []datum.Datum
}

func newFrame(proc string, node *datum.Node) *Frame {
	return &Frame{
		ProcName: proc,
		Node:     node,
		vars:     make(map[string]datum.Datum),
		local:    make(map[string]bool),
	}
}

// Test records b as this frame's TEST result.
func (f *Frame) Test(b bool) { f.tested = &b }

// Tested reports this frame's most recent TEST result, if any.
func (f *Frame) Tested() (bool, bool) {
	if f.tested == nil {
		return false, false
	}
	return *f.tested, true
}

// Stack is the LIFO call-frame stack plus the global frame, per spec
// 4.7's variable model.
type Stack struct {
	global *Frame
	frames []*Frame
}

// NewStack returns a Stack with only the global frame.
func NewStack() *Stack {
	return &Stack{global: newFrame("", nil)}
}

// Push enters a new call frame for proc, invoked by node.
func (s *Stack) Push(proc string, node *datum.Node) *Frame {
	f := newFrame(proc, node)
	s.frames = append(s.frames, f)
	return f
}

// Pop leaves the innermost call frame.
func (s *Stack) Pop() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Depth reports the number of active call frames, for the
// STACK-OVERFLOW limit (spec 4.8).
func (s *Stack) Depth() int { return len(s.frames) }

// Current returns the innermost call frame, or nil at top level.
func (s *Stack) Current() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// Global returns the global frame.
func (s *Stack) Global() *Frame { return s.global }

// Test records b as the TEST result of the current frame (TEST), or
// of the global frame at top level.
func (s *Stack) Test(b bool) {
	if f := s.Current(); f != nil {
		f.Test(b)
		return
	}
	s.global.Test(b)
}

// TestResult reports the nearest TEST result visible to the current
// frame, walking from innermost to outermost and then the global frame,
// so an inner procedure can observe an outer TEST, per spec 4.7.
func (s *Stack) TestResult() (bool, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i].Tested(); ok {
			return b, ok
		}
	}
	return s.global.Tested()
}

// frameForLocal returns the innermost frame (searching from the top
// of the call stack down) that declared name local, or nil if none
// did.
func (s *Stack) frameForLocal(k string) *Frame {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].local[k] {
			return s.frames[i]
		}
	}
	return nil
}

// Get looks up name, searching for a declared LOCAL up the call
// stack before falling back to the global frame.
func (s *Stack) Get(name string) (datum.Datum, bool) {
	k := key(name)
	if f := s.frameForLocal(k); f != nil {
		v, ok := f.vars[k]
		return v, ok
	}
	v, ok := s.global.vars[k]
	return v, ok
}

// Set is MAKE: assigns to the nearest enclosing LOCAL of name, or the
// global frame if none exists.
func (s *Stack) Set(name string, v datum.Datum) {
	k := key(name)
	if f := s.frameForLocal(k); f != nil {
		f.vars[k] = v
		return
	}
	s.global.vars[k] = v
}

// MakeLocal declares name local to the current frame (LOCAL), with no
// value bound yet. At top level (no current frame) this is a no-op,
// matching UCBLogo's "LOCAL outside a procedure has no effect".
func (s *Stack) MakeLocal(name string) {
	f := s.Current()
	if f == nil {
		return
	}
	k := key(name)
	f.local[k] = true
}

// LocalMake declares name local to the current frame and binds v in
// the same step (LOCALMAKE). At top level it falls back to a global
// assignment.
func (s *Stack) LocalMake(name string, v datum.Datum) {
	f := s.Current()
	if f == nil {
		s.global.vars[key(name)] = v
		return
	}
	k := key(name)
	f.local[k] = true
	f.vars[k] = v
}

// SetGlobal forces an assignment into the global frame regardless of
// any same-named LOCAL further in (GLOBAL followed by MAKE relies on
// this only indirectly; GLOBAL itself just predeclares the name so
// that later MAKE calls, finding no LOCAL, already fall through here
// naturally -- this helper exists for primitives that want to bypass
// locals explicitly).
func (s *Stack) SetGlobal(name string, v datum.Datum) {
	s.global.vars[key(name)] = v
}

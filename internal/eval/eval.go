// Package eval walks the datum.Node trees the tree builder produces and
// implements the procedure call protocol (spec 4.8). It does not recover
// Go panics: the one seam that turns an unexpected internal panic into a
// SYSTEM-tagged error is repl.recoverToSystemError. It implements
// registry.Context, so primitive bodies -- written against that
// interface -- can recursively evaluate control-flow bodies, touch
// variables and read/print through the current streams without this
// package or registry ever importing each other's concrete types.
package eval

import (
	"fmt"

	"github.com/dcorbin/qlogo/internal/datum"
	"github.com/dcorbin/qlogo/internal/frame"
	"github.com/dcorbin/qlogo/internal/registry"
	"github.com/dcorbin/qlogo/internal/runparse"
	"github.com/dcorbin/qlogo/internal/streams"
	"github.com/dcorbin/qlogo/internal/treebuild"
)

// maxDepth bounds the call-frame stack; exceeding it raises
// STACK-OVERFLOW rather than letting a runaway recursive procedure
// exhaust the Go stack (spec 4.8).
const maxDepth = 1000

// Evaluator is the concrete registry.Context.
type Evaluator struct {
	reg     *registry.Registry
	vars    *frame.Stack
	streams *streams.Manager

	interrupt func() (tag string, pending bool)
}

// Option configures an Evaluator at construction, following the same
// functional-options shape as the teacher's VM construction.
type Option func(*Evaluator)

// WithStreams supplies the stream manager PRINT/READRAWLINE use.
func WithStreams(m *streams.Manager) Option {
	return func(e *Evaluator) { e.streams = m }
}

// WithInterruptPoll installs the host's "has a signal arrived"
// callback, polled between procedure body lines per spec 5.
func WithInterruptPoll(fn func() (tag string, pending bool)) Option {
	return func(e *Evaluator) { e.interrupt = fn }
}

// New returns an Evaluator wired to reg, with a fresh global/call
// frame stack.
func New(reg *registry.Registry, opts ...Option) *Evaluator {
	e := &Evaluator{reg: reg, vars: frame.NewStack()}
	for _, o := range opts {
		o(e)
	}
	if e.streams == nil {
		e.streams = streams.NewManager(nullConsole{})
	}
	return e
}

// Registry implements registry.Context.
func (e *Evaluator) Registry() *registry.Registry { return e.reg }

// Vars exposes the frame stack for the REPL's PAUSE/CONTINUE and for
// tests; primitives should go through GetVar/SetVar/MakeLocal/SetLocal
// instead.
func (e *Evaluator) Vars() *frame.Stack { return e.vars }

// GetVar implements registry.Context.
func (e *Evaluator) GetVar(name string) (datum.Datum, bool) { return e.vars.Get(name) }

// SetVar implements registry.Context (MAKE).
func (e *Evaluator) SetVar(name string, v datum.Datum) { e.vars.Set(name, v) }

// SetLocal implements registry.Context (LOCALMAKE).
func (e *Evaluator) SetLocal(name string, v datum.Datum) { e.vars.LocalMake(name, v) }

// MakeLocal implements registry.Context (LOCAL).
func (e *Evaluator) MakeLocal(name string) { e.vars.MakeLocal(name) }

// Test implements registry.Context (TEST).
func (e *Evaluator) Test(b bool) { e.vars.Test(b) }

// TestResult implements registry.Context (IFTRUE/IFFALSE).
func (e *Evaluator) TestResult() (bool, bool) { return e.vars.TestResult() }

// Print implements registry.Context.
func (e *Evaluator) Print(s string) { e.streams.Print(s) }

// ReadRawLine implements registry.Context.
func (e *Evaluator) ReadRawLine() (string, bool) { return e.streams.ReadRawLine() }

// Streams exposes the stream manager to primitives that need more
// than Print/ReadRawLine (OPENREAD, SETWRITE, and so on).
func (e *Evaluator) Streams() *streams.Manager { return e.streams }

// Eval evaluates one node and returns its value. Flow-control signals
// (OUTPUT/STOP/GOTO/THROW/errors) come back as a *datum.FlowControl
// satisfying the error interface, per spec 9's "flow control as
// value" redesign -- Eval itself never panics for Logo-level control.
func (e *Evaluator) Eval(n *datum.Node) (v datum.Datum, err error) {
	switch n.Op {
	case datum.OpLiteral:
		return n.Literal, nil
	case datum.OpVarRef:
		val, ok := e.vars.Get(n.Name)
		if !ok {
			return nil, datum.NewError(n, datum.ErrNoValue, n.Name+" has no value")
		}
		return val, nil
	case datum.OpParen:
		return e.Eval(n.Children[0])
	case datum.OpCall:
		return e.evalCall(n)
	default:
		return nil, fmt.Errorf("eval: unhandled node op %v", n.Op)
	}
}

// evalArg evaluates an argument expression and enforces that it
// actually produced a value: a command that falls off the end of its
// body yields Nothing, which is only legal in statement position, not
// as an input to something else (spec 7's DIDNT-OUTPUT).
func (e *Evaluator) evalArg(n *datum.Node) (datum.Datum, error) {
	v, err := e.Eval(n)
	if err != nil {
		return nil, err
	}
	if datum.IsNothing(v) {
		name := n.Name
		if name == "" {
			name = "that expression"
		}
		return nil, datum.NewError(n, datum.ErrDidntOutput, name+" didn't output")
	}
	return v, nil
}

func (e *Evaluator) evalCall(n *datum.Node) (datum.Datum, error) {
	name := n.Name

	if proc, ok := e.reg.Procedure(name); ok {
		args := make([]datum.Datum, len(n.Children))
		for i, c := range n.Children {
			v, err := e.evalArg(c)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return e.callProcedure(proc, args, n)
	}

	fn, a, ok := e.reg.Primitive(name)
	if !ok {
		return nil, datum.NewError(n, datum.ErrNoHow, "I don't know how to "+name)
	}
	args := make([]datum.Datum, len(n.Children))
	if a.Min < 0 {
		for i, c := range n.Children {
			args[i] = c.Literal
		}
		return fn(e, args)
	}
	for i, c := range n.Children {
		v, err := e.evalArg(c)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return fn(e, args)
}

// callProcedure implements the binding protocol of spec 4.8: required
// params left to right, then optional params (binding a supplied
// extra arg or evaluating the param's default expression in the new
// frame), then the rest param soaking up everything left over.
func (e *Evaluator) callProcedure(proc *datum.Procedure, args []datum.Datum, node *datum.Node) (datum.Datum, error) {
	if e.vars.Depth() >= maxDepth {
		return nil, datum.NewError(node, datum.ErrStackOverflow, "Sorry, too much recursion")
	}
	if len(args) < len(proc.Required) {
		return nil, datum.NewError(node, datum.ErrNotEnough, "not enough inputs to "+proc.Name)
	}

	e.vars.Push(proc.Name, node)
	defer e.vars.Pop()

	idx := 0
	for _, p := range proc.Required {
		e.vars.MakeLocal(p)
		e.vars.Set(p, args[idx])
		idx++
	}
	for _, opt := range proc.Optional {
		e.vars.MakeLocal(opt.Name)
		if idx < len(args) {
			e.vars.Set(opt.Name, args[idx])
			idx++
			continue
		}
		def, err := e.evalNodes(opt.Default)
		if err != nil {
			return nil, err
		}
		e.vars.Set(opt.Name, def)
	}
	if proc.Rest != "" {
		e.vars.MakeLocal(proc.Rest)
		e.vars.Set(proc.Rest, datum.FromSlice(args[idx:]))
		idx = len(args)
	}
	if idx < len(args) {
		return nil, datum.NewError(node, datum.ErrTooMany, "too many inputs to "+proc.Name)
	}

	v, err := e.runBody(proc.Body, proc.Tags)
	if err != nil {
		return nil, err
	}
	if proc.IsMacro {
		if lst, ok := v.(*datum.List); ok {
			return e.RunList(lst)
		}
		return datum.Nothing(), nil
	}
	return v, nil
}

// evalNodes evaluates each node in order and returns the last value,
// used for an optional parameter's default-value expression.
func (e *Evaluator) evalNodes(nodes []*datum.Node) (datum.Datum, error) {
	var last datum.Datum = datum.Nothing()
	for _, n := range nodes {
		v, err := e.Eval(n)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

// runBody executes a procedure body line by line, honoring GOTO
// against tags (a line index table) and absorbing an OUTPUT/STOP as
// this call's result. Any other flow control (THROW, a primitive
// error, an unmatched GOTO) propagates to the caller.
func (e *Evaluator) runBody(body []datum.Line, tags map[string]int) (datum.Datum, error) {
	i := 0
	for i < len(body) {
		if e.interrupt != nil {
			if tag, pending := e.interrupt(); pending {
				return nil, &datum.FlowControl{FKind: datum.FlowError, Code: datum.ErrCustomThrow, Message: "interrupted", ErrTag: tag}
			}
		}
		jumped := false
		for _, n := range body[i].Nodes {
			v, err := e.Eval(n)
			if err == nil {
				_ = v
				continue
			}
			fc, ok := err.(*datum.FlowControl)
			if !ok {
				return nil, err
			}
			switch fc.FKind {
			case datum.FlowReturn:
				return fc.Value, nil
			case datum.FlowGoto:
				if idx, ok2 := tags[fc.Tag]; ok2 {
					i = idx
					jumped = true
				} else {
					return nil, err
				}
			default:
				return nil, err
			}
			if jumped {
				break
			}
		}
		if !jumped {
			i++
		}
	}
	return datum.Nothing(), nil
}

// RunList implements registry.Context: run-parse and tree-build
// body's tokens, then execute them as a sequence of statements. An
// OUTPUT/STOP inside body is absorbed and returned as RunList's
// result; otherwise the last statement's value is the result,
// matching RUN/IF-bracket/CATCH-body semantics. GOTO and THROW both
// propagate to whatever is above RunList (the enclosing procedure
// body's tag table, or an enclosing CATCH).
func (e *Evaluator) RunList(body *datum.List) (datum.Datum, error) {
	toks := body.ToSlice()
	parsed := runparse.RunParse(toks)
	roots, err := treebuild.Build(parsed, e.reg)
	if err != nil {
		return nil, datum.NewError(nil, datum.ErrNoHow, err.Error())
	}
	if e.interrupt != nil {
		if tag, pending := e.interrupt(); pending {
			return nil, &datum.FlowControl{FKind: datum.FlowError, Code: datum.ErrCustomThrow, Message: "interrupted", ErrTag: tag}
		}
	}
	var last datum.Datum = datum.Nothing()
	for _, n := range roots {
		v, err := e.Eval(n)
		if fc, ok := err.(*datum.FlowControl); ok && fc.FKind == datum.FlowReturn {
			return fc.Value, nil
		} else if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

type nullConsole struct{}

func (nullConsole) ReadRawLine() (string, bool) { return "", false }
func (nullConsole) ReadChar() (rune, bool)       { return 0, false }
func (nullConsole) Print(string)                {}

// Package repl implements the read-tree-build-run loop of spec 4.9: the
// top-level driver that reads one logical line at a time from the host,
// recognizes TO/.MACRO as a reader-mode special case rather than an
// ordinary call, and models PAUSE/CONTINUE as a recursive invocation of
// itself on the current call frame (the redesign note under "Cooperative
// coroutines"). It is the one package that knows about both internal/eval
// and internal/reader, and the one seam (recoverToSystemError) where an
// unexpected internal Go panic is turned into a SYSTEM-tagged error
// instead of crashing the process (spec 9).
package repl

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/dcorbin/qlogo/internal/datum"
	"github.com/dcorbin/qlogo/internal/eval"
	"github.com/dcorbin/qlogo/internal/host"
	"github.com/dcorbin/qlogo/internal/reader"
	"github.com/dcorbin/qlogo/internal/registry"
)

// REPL drives one evaluator against one host, start to finish. New wires
// PAUSE/CONTINUE into reg so they can recurse back into this package
// without reg or eval needing to import it.
type REPL struct {
	reg *registry.Registry
	ev  *eval.Evaluator
	h   host.Host

	rd *reader.Reader

	// depth counts nested REPL invocations: 0 at top level, >0 inside a
	// PAUSE. It feeds the prompt's "?" vs "procname?" shape.
	depth int

	// trace, if set, is called with each top-level line's source text
	// before it runs (wired to --trace in cmd/qlogo).
	trace func(line string)
}

// SetTrace installs a callback invoked with each top-level line's text
// just before it runs, or nil to disable tracing.
func (r *REPL) SetTrace(fn func(line string)) { r.trace = fn }

func tokensText(toks []datum.Datum) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 {
			b.WriteByte(' ')
		}
		if w, ok := t.(*datum.Word); ok {
			b.WriteString(w.Print())
		} else {
			fmt.Fprint(&b, t)
		}
	}
	return b.String()
}

// errEndOfInput marks a nested REPL (one entered by PAUSE) running off
// the end of the host's input, as distinct from CONTINUE resuming it.
var errEndOfInput = errors.New("repl: end of input")

// hostLineSource adapts host.Host.ReadRawLine(prompt) to reader.LineSource,
// showing prompt only for the first physical line it supplies and
// silence ("") for every later one. One source is kept alive across a
// whole REPL run (a new one is made per PAUSE level and after a parse
// error), so the prompt appears once at the start of that run, not
// before each logical line.
type hostLineSource struct {
	h      host.Host
	prompt string
	used   bool
}

func (s *hostLineSource) NextLine() (string, bool) {
	p := ""
	if !s.used {
		p = s.prompt
		s.used = true
	}
	return s.h.ReadRawLine(p)
}

// New returns a REPL reading from h and evaluating through ev/reg. It
// registers PAUSE and CONTINUE on reg, so those two names must not
// already be installed there.
func New(reg *registry.Registry, ev *eval.Evaluator, h host.Host) *REPL {
	r := &REPL{reg: reg, ev: ev, h: h}
	reg.DefinePrimitive("PAUSE", registry.Arity{Min: 0, Default: 0, Max: 0}, r.pausePrimitive)
	reg.DefinePrimitive("CONTINUE", registry.Arity{Min: 1, Default: 1, Max: 1}, r.continuePrimitive)
	return r
}

// prompt formats the REPL's prompt per spec 4.9: the innermost
// procedure's name when paused inside one, a bare "?" at true top level.
func (r *REPL) prompt() string {
	if f := r.ev.Vars().Current(); f != nil {
		return f.ProcName + "? "
	}
	return "? "
}

func (r *REPL) newReader() *reader.Reader {
	return reader.New(&hostLineSource{h: r.h, prompt: r.prompt()})
}

// Run drives the read/build/run loop until end of file or a
// SYSTEM-tagged error reaches it. It returns nil on ordinary EOF
// termination, or the SYSTEM error that ended the process.
func (r *REPL) Run() error {
	r.rd = r.newReader()
	for {
		line, ok, err := r.readLogicalLine()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := r.runLine(line); err != nil {
			return err
		}
	}
}

// runNested implements PAUSE: a recursive REPL over the same evaluator
// and call-frame stack, reading from the same host, until CONTINUE
// supplies a value (returned here as PAUSE's result) or the input runs
// out (errEndOfInput) or a TOPLEVEL/SYSTEM signal unwinds past it.
func (r *REPL) runNested() (datum.Datum, error) {
	r.depth++
	defer func() { r.depth-- }()

	savedRd := r.rd
	r.rd = r.newReader()
	defer func() { r.rd = savedRd }()

	for {
		line, ok, err := r.readLogicalLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errEndOfInput
		}
		if v, done, err := r.runNestedLine(line); done {
			return v, err
		}
	}
}

// readLogicalLine reads one top-level line, re-synchronizing the
// reader and reporting a parse error rather than propagating it, since
// a malformed line should not end the session.
func (r *REPL) readLogicalLine() (*datum.List, bool, error) {
	line, ok, err := r.rd.ReadList()
	if err != nil {
		r.reportError(err)
		r.rd = r.newReader()
		return nil, true, nil
	}
	if !ok {
		return nil, false, nil
	}
	return line, true, nil
}

// runLine executes one top-level line read by Run, handling the TO/
// .MACRO reader mode and the TOPLEVEL/SYSTEM tag rules of spec 4.9. A
// non-nil return ends Run with that error (only SYSTEM does this).
func (r *REPL) runLine(line *datum.List) error {
	toks := line.ToSlice()
	if name, isDefine := defineKeyword(toks); isDefine {
		if err := r.readDefinition(name, toks); err != nil {
			r.reportError(err)
		}
		return nil
	}
	if r.trace != nil {
		r.trace(tokensText(toks))
	}
	if err := r.execTopLevel(line); err != nil {
		return r.handleTopLevelError(err)
	}
	return nil
}

// runNestedLine is runLine's counterpart inside a PAUSE: it additionally
// recognizes the PAUSE-tagged signal CONTINUE raises and ends the
// nested loop with its payload.
func (r *REPL) runNestedLine(line *datum.List) (v datum.Datum, done bool, err error) {
	toks := line.ToSlice()
	if name, isDefine := defineKeyword(toks); isDefine {
		if err := r.readDefinition(name, toks); err != nil {
			r.reportError(err)
		}
		return nil, false, nil
	}
	if r.trace != nil {
		r.trace(tokensText(toks))
	}
	runErr := r.execTopLevel(line)
	if runErr == nil {
		return nil, false, nil
	}
	if fc, ok := runErr.(*datum.FlowControl); ok && fc.ErrTag == datum.TagPause {
		return fc.Output, true, nil
	}
	if stop := r.handleTopLevelError(runErr); stop != nil {
		return nil, true, stop
	}
	return nil, false, nil
}

// handleTopLevelError applies spec 4.9's tag rules: TOPLEVEL is
// discarded and the loop continues, SYSTEM terminates the loop with
// that error, anything else triggers ERRACT recovery (if armed) and is
// otherwise just reported.
func (r *REPL) handleTopLevelError(err error) error {
	fc, ok := err.(*datum.FlowControl)
	if !ok {
		r.reportError(err)
		return nil
	}
	switch fc.ErrTag {
	case datum.TagTopLevel:
		return nil
	case datum.TagSystem:
		return err
	default:
		r.recoverOrReport(fc)
		return nil
	}
}

// recoverOrReport implements spec 4.8's ERRACT recovery: when the
// global ERRACT is bound to a non-false value, an otherwise-uncaught
// error enters PAUSE (at this, the outermost point it reaches) instead
// of just being printed, so the user can inspect state and CONTINUE
// with a replacement value before the error is finally discarded.
func (r *REPL) recoverOrReport(fc *datum.FlowControl) {
	if !erractArmed(r.ev) {
		r.reportError(fc)
		return
	}
	r.reportError(fc)
	if _, err := r.runNested(); err != nil && err != errEndOfInput {
		r.reportError(err)
	}
}

func erractArmed(ev *eval.Evaluator) bool {
	v, ok := ev.GetVar("ERRACT")
	if !ok {
		return false
	}
	w, ok := v.(*datum.Word)
	if !ok {
		return true
	}
	b, _ := w.AsBool()
	return b
}

// execTopLevel runs one already-read top-level line, guarded by the
// single panic/recover seam: an internal Go panic anywhere underneath
// becomes a SYSTEM-tagged FlowControl rather than taking the process
// down, per spec 9.
func (r *REPL) execTopLevel(line *datum.List) error {
	err := recoverToSystemError(func() error {
		v, err := r.ev.RunList(line)
		if err != nil {
			return err
		}
		if !datum.IsNothing(v) {
			return datum.NewError(nil, datum.ErrDontSay, "You don't say what to do with "+printed(v))
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if _, ok := err.(*datum.FlowControl); ok {
		return err
	}
	return &datum.FlowControl{FKind: datum.FlowError, Code: datum.ErrNoHow, Message: err.Error(), ErrTag: datum.TagSystem}
}

// recoverToSystemError runs f on its own goroutine -- recover only
// catches a panic on the goroutine that is unwinding -- and turns
// either an internal Go panic or a stray runtime.Goexit call directly
// into a SYSTEM-tagged FlowControl, rather than a generic error some
// other layer would have to reclassify. The two-defer shape (Goexit
// detector outermost, panic recovery innermost, each only sending if
// the buffered channel is still empty) matches how a normal return,
// a panic, and a bare Goexit each leave a different subset of these
// deferred sends able to fire.
func recoverToSystemError(f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer func() {
			select {
			case errch <- systemError("repl called runtime.Goexit"):
			default:
			}
		}()
		defer func() {
			if rec := recover(); rec != nil {
				select {
				case errch <- systemError(fmt.Sprintf("repl paniced: %v\n%s", rec, debug.Stack())):
				default:
				}
			}
		}()
		errch <- f()
	}()
	return <-errch
}

func systemError(msg string) *datum.FlowControl {
	return &datum.FlowControl{FKind: datum.FlowError, Code: datum.ErrNoHow, Message: msg, ErrTag: datum.TagSystem}
}

func printed(v datum.Datum) string {
	if w, ok := v.(*datum.Word); ok {
		return w.Print()
	}
	return fmt.Sprint(v)
}

// reportError writes a failure to the host the way a running script's
// unhandled error is shown to the user (spec 7's diagnostic shape,
// simplified to message plus procedure when known).
func (r *REPL) reportError(err error) {
	if fc, ok := err.(*datum.FlowControl); ok {
		msg := fc.Message
		if fc.Procedure != "" {
			msg = fmt.Sprintf("%s in %s", msg, fc.Procedure)
		}
		r.h.Print(msg + "\n")
		return
	}
	r.h.Print(err.Error() + "\n")
}

func defineKeyword(toks []datum.Datum) (name string, ok bool) {
	if len(toks) < 2 {
		return "", false
	}
	w, isWord := toks[0].(*datum.Word)
	if !isWord {
		return "", false
	}
	switch strings.ToUpper(w.Raw()) {
	case "TO", ".MACRO":
		return strings.ToUpper(w.Raw()), true
	default:
		return "", false
	}
}

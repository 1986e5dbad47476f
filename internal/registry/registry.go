// Package registry is the single source of truth for "what does this
// name mean": built-in primitives installed once at startup, and user
// procedures defined/redefined/erased by TO, .MACRO, COPYDEF and
// ERASE. The tree builder consults it (through the Resolver-shaped
// Lookup it exposes) to find arity before an AST exists; the
// evaluator consults it again at call time to find what to actually
// run.
//
// Context is the calling convention a PrimitiveFunc sees: just enough
// of the evaluator to run control-flow bodies, touch variables and
// talk to the current streams, without registry ever importing eval
// or primitive itself. eval implements Context; primitive functions
// are written against it.
package registry

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dcorbin/qlogo/internal/datum"
)

// Arity mirrors treebuild.Arity; duplicated here (rather than
// imported) so registry has no dependency on treebuild -- treebuild
// depends on registry's shape through its own local Resolver
// interface instead. Both are aliases of the same unnamed struct type,
// so they are one type and Lookup satisfies treebuild.Resolver.
type Arity = struct {
	Min, Default, Max int
}

// Context is the interface a PrimitiveFunc body is written against.
type Context interface {
	// Eval evaluates a single AST node (one expression or statement)
	// and returns its value, or a *datum.FlowControl as error for
	// OUTPUT/STOP/THROW/GOTO/errors unwinding through it.
	Eval(n *datum.Node) (datum.Datum, error)

	// RunList run-parses, tree-builds and evaluates every statement
	// in body in turn, returning the value of an OUTPUT/STOP that
	// escaped it, or nil.
	RunList(body *datum.List) (datum.Datum, error)

	GetVar(name string) (datum.Datum, bool)
	SetVar(name string, v datum.Datum)
	SetLocal(name string, v datum.Datum)
	MakeLocal(name string)

	// Test/TestResult implement TEST/IFTRUE/IFFALSE's per-frame state
	// (spec 4.7): Test records this frame's result, TestResult searches
	// outward from the current frame for the nearest one recorded.
	Test(b bool)
	TestResult() (bool, bool)

	Print(s string)
	ReadRawLine() (string, bool)

	// Registry gives a primitive implementing COPYDEF/ERASE/DEFINE
	// access back to the registry that dispatched it.
	Registry() *Registry
}

// PrimitiveFunc implements one built-in. Args have already been
// evaluated by the time a non-special-form primitive sees them;
// special forms (Arity.Min < 0) instead receive their Node's raw
// Children as OpLiteral-wrapped tokens and use ctx.Eval/RunList
// themselves.
type PrimitiveFunc func(ctx Context, args []datum.Datum) (datum.Datum, error)

type primitiveEntry struct {
	arity Arity
	fn    PrimitiveFunc
}

// Registry holds every name the evaluator can invoke.
type Registry struct {
	mu         sync.RWMutex
	primitives map[string]primitiveEntry
	procs      map[string]*datum.Procedure
	aliases    map[string]string // COPYDEF target -> source name
	buried     map[string]bool
	traced     map[string]bool
	stepped    map[string]bool

	generation uint64

	// autoload backs spec 6.4's on-demand library loading: consulted on
	// a name miss, it gets one chance to DefineProcedure(name) itself
	// (typically by compiling LIBRARY's stored source for it) and
	// report whether it did.
	autoload Autoloader
}

// Autoloader is consulted once by Lookup/Procedure whenever name isn't
// already a primitive or a defined procedure. A true return means it
// called DefineProcedure for name, so the caller should look it up
// again; false means autoload has nothing for this name either.
type Autoloader func(name string) bool

// SetAutoloader installs (or, with nil, removes) the registry's
// autoload hook.
func (r *Registry) SetAutoloader(fn Autoloader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoload = fn
}

func (r *Registry) tryAutoload(name string) bool {
	r.mu.RLock()
	fn := r.autoload
	r.mu.RUnlock()
	if fn == nil {
		return false
	}
	return fn(name)
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		primitives: make(map[string]primitiveEntry),
		procs:      make(map[string]*datum.Procedure),
		aliases:    make(map[string]string),
		buried:     make(map[string]bool),
		traced:     make(map[string]bool),
		stepped:    make(map[string]bool),
	}
}

func key(name string) string {
	if datum.CaseIgnoreDP {
		return strings.ToUpper(name)
	}
	return name
}

// bump advances the generation stamp on every define/redefine/erase.
// No AST cache reads it: lists are run-parsed and tree-built afresh
// each time they run.
func (r *Registry) bump() { atomic.AddUint64(&r.generation, 1) }

// Generation reports the current definition-generation stamp.
func (r *Registry) Generation() uint64 { return atomic.LoadUint64(&r.generation) }

// DefinePrimitive installs a built-in. It panics on a duplicate name,
// since that can only be a wiring bug at startup, never user input.
func (r *Registry) DefinePrimitive(name string, a Arity, fn PrimitiveFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(name)
	if _, exists := r.primitives[k]; exists {
		panic(fmt.Sprintf("registry: duplicate primitive %s", name))
	}
	r.primitives[k] = primitiveEntry{arity: a, fn: fn}
}

// DefineProcedure installs or replaces a user procedure (TO/.MACRO).
// Redefining a primitive name is allowed -- user definitions shadow
// built-ins, per spec 4.6 -- but redefining a name that is currently
// executing (TO-IN-PROC) is the caller's job to detect before calling
// this.
func (r *Registry) DefineProcedure(p *datum.Procedure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs[key(p.Name)] = p
	delete(r.aliases, key(p.Name))
	r.bump()
}

// Copydef makes target an alias for source's current definition
// (primitive or procedure); redefining target later does not affect
// the alias, matching COPYDEF's copy-not-link semantics for
// procedures, while primitives are aliased by name lookup.
func (r *Registry) Copydef(target, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sk := key(source)
	if p, ok := r.procs[sk]; ok {
		cp := *p
		cp.Name = target
		r.procs[key(target)] = &cp
		delete(r.aliases, key(target))
		r.bump()
		return nil
	}
	if _, ok := r.primitives[sk]; ok {
		r.aliases[key(target)] = sk
		r.bump()
		return nil
	}
	return fmt.Errorf("I don't know how to %s", source)
}

// Erase removes a user procedure. Erasing a primitive name is not
// possible; spec 4.6 reserves ERASE for procedures the user defined.
func (r *Registry) Erase(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(name)
	if _, ok := r.procs[k]; !ok {
		return fmt.Errorf("%s is not defined", name)
	}
	delete(r.procs, k)
	delete(r.aliases, k)
	r.bump()
	return nil
}

// Procedure returns the named user procedure, if any, giving the
// autoload hook one chance to define it on demand first (spec 6.4).
func (r *Registry) Procedure(name string) (*datum.Procedure, bool) {
	r.mu.RLock()
	p, ok := r.procs[key(name)]
	r.mu.RUnlock()
	if ok {
		return p, true
	}
	if r.tryAutoload(name) {
		r.mu.RLock()
		defer r.mu.RUnlock()
		p, ok := r.procs[key(name)]
		return p, ok
	}
	return nil, false
}

// Primitive returns the named built-in, resolving aliases, if any.
func (r *Registry) Primitive(name string) (PrimitiveFunc, Arity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k := key(name)
	if target, ok := r.aliases[k]; ok {
		k = target
	}
	e, ok := r.primitives[k]
	return e.fn, e.arity, ok
}

// Lookup implements treebuild.Resolver: procedures shadow primitives,
// matching spec 4.6's "redefinition" rule. A name neither knows, the
// autoload hook (spec 6.4) gets one chance to define before Lookup
// finally reports not-found.
func (r *Registry) Lookup(name string) (Arity, bool) {
	if a, ok := r.lookupKnown(name); ok {
		return a, true
	}
	if r.tryAutoload(name) {
		return r.lookupKnown(name)
	}
	return Arity{}, false
}

func (r *Registry) lookupKnown(name string) (Arity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k := key(name)
	if p, ok := r.procs[k]; ok {
		return Arity{Min: p.MinArity, Default: p.DefaultArity, Max: p.MaxArity}, true
	}
	if target, ok := r.aliases[k]; ok {
		k = target
	}
	if e, ok := r.primitives[k]; ok {
		return e.arity, true
	}
	return Arity{}, false
}

// Invoke calls the primitive name with already-evaluated args. It does
// not dispatch user procedures: a name that is not a primitive reports
// "I don't know how to".
func (r *Registry) Invoke(ctx Context, name string, args []datum.Datum) (datum.Datum, error) {
	if fn, _, ok := r.Primitive(name); ok {
		return fn(ctx, args)
	}
	return nil, fmt.Errorf("I don't know how to %s", name)
}

// Bury/Unbury/IsBuried implement BURY/UNBURY's effect on ERALL/ERN
// and POALL-style introspection (spec 4.6).
func (r *Registry) Bury(name string)   { r.mu.Lock(); defer r.mu.Unlock(); r.buried[key(name)] = true }
func (r *Registry) Unbury(name string) { r.mu.Lock(); defer r.mu.Unlock(); delete(r.buried, key(name)) }
func (r *Registry) IsBuried(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.buried[key(name)]
}

// Trace/Untrace/IsTraced and Step/Unstep/IsStepped back TRACE/UNTRACE
// and STEP/UNSTEP (spec 4.8's evaluator hooks).
func (r *Registry) Trace(name string)   { r.mu.Lock(); defer r.mu.Unlock(); r.traced[key(name)] = true }
func (r *Registry) Untrace(name string) { r.mu.Lock(); defer r.mu.Unlock(); delete(r.traced, key(name)) }
func (r *Registry) IsTraced(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.traced[key(name)]
}
func (r *Registry) Step(name string)   { r.mu.Lock(); defer r.mu.Unlock(); r.stepped[key(name)] = true }
func (r *Registry) Unstep(name string) { r.mu.Lock(); defer r.mu.Unlock(); delete(r.stepped, key(name)) }
func (r *Registry) IsStepped(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stepped[key(name)]
}

// ErnAll lists every defined procedure name not buried, for ERALL /
// ERN [names].
func (r *Registry) ErnAll() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for n := range r.procs {
		if !r.buried[n] {
			out = append(out, n)
		}
	}
	return out
}

// Text returns a procedure's TO..END listing, rebuilt from its
// parsed body rather than kept verbatim, for TEXT/FULLTEXT.
func (r *Registry) Text(name string) (*datum.List, error) {
	p, ok := r.Procedure(name)
	if !ok {
		return nil, fmt.Errorf("%s is not defined", name)
	}
	var b datum.Builder
	for _, ln := range p.Body {
		var lb datum.Builder
		for _, n := range ln.Nodes {
			lb.Append(nodeToDatum(n))
		}
		b.Append(lb.Build())
	}
	return b.Build(), nil
}

func nodeToDatum(n *datum.Node) datum.Datum {
	switch n.Op {
	case datum.OpLiteral:
		return n.Literal
	case datum.OpVarRef:
		return datum.NewWord(":" + n.Name)
	default:
		return datum.NewWord(n.Name)
	}
}
